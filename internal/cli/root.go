package cli

import (
	"context"
	"os"
)

// Execute runs the talklike CLI with the process arguments and returns an
// error if any command fails.
//
// Logging goes to stderr at info level, or debug with --verbose (-v). The
// logger is attached to the command context and reachable from every
// command via loggerFromContext.
//
// Example:
//
//	func main() {
//	    ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer cancel()
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return New(os.Stderr, LogInfo).RootCommand().ExecuteContext(ctx)
}
