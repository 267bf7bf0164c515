package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

// maxLineBytes bounds a single stdin line.
const maxLineBytes = 1 << 20

// transformCommand creates the transform command.
func (c *CLI) transformCommand() *cobra.Command {
	var (
		refresh bool
		stats   bool
	)

	cmd := &cobra.Command{
		Use:     "transform FILTER [TEXT...]",
		Aliases: []string{"t"},
		Short:   "Transform text through a filter",
		Long: `Transform text through a filter.

FILTER is a catalog id ("pirate") or a path to a definition file
("./my_filter.yaml"). Text given as arguments is joined with spaces and
transformed once. Without text, stdin is transformed line by line through a
single session, so sentence augmentations keep counting across lines. Stdin
mode never reads or writes the result cache.`,
		Example: `  talklike transform pirate "Hello my friend!"
  echo "Hello there!" | talklike transform disco
  talklike transform ./filters/valley_1980s.yaml < speech.txt`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeFilters,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner()
			if err != nil {
				return err
			}
			defer runner.Close()

			ctx := cmd.Context()
			if len(args) == 1 {
				compiled, err := c.compile(ctx, runner, args[0])
				if err != nil {
					return err
				}
				st, err := transformLines(ctx, compiled, cmd.InOrStdin(), cmd.OutOrStdout())
				if stats {
					printStats(st, false)
				}
				return err
			}

			opts := pipeline.Options{
				Filter:  args[0],
				Text:    strings.Join(args[1:], " "),
				Refresh: refresh,
				Logger:  c.Logger,
			}
			var result *pipeline.Result
			if isDefinitionFile(args[0]) {
				compiled, err := c.compile(ctx, runner, args[0])
				if err != nil {
					return err
				}
				result, err = runner.ExecuteCompiled(ctx, compiled, opts)
				if err != nil {
					return err
				}
			} else if result, err = runner.Execute(ctx, opts); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Output)
			if stats {
				printStats(result.Stats, result.CacheInfo.ResultHit)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results (stdin mode is never cached)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print timing and cache statistics to stderr")

	return cmd
}

// transformLines runs every line of r through one session of the filter.
// Lines already transformed are flushed to w even when a later line fails.
func transformLines(ctx context.Context, compiled *pipeline.Compiled, r io.Reader, w io.Writer) (st pipeline.Stats, err error) {
	session := compiled.Filter.NewSession()
	st.Stages = len(compiled.Filter.Stages())

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	bw := bufio.NewWriter(w)
	defer func() {
		if ferr := bw.Flush(); err == nil {
			err = ferr
		}
	}()

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		line := scanner.Text()
		st.InputBytes += len(line)
		if line == "" {
			bw.WriteByte('\n')
			continue
		}
		if err := errors.ValidateText(line); err != nil {
			return st, err
		}
		start := time.Now()
		out := session.Transform(line)
		st.TransformTime += time.Since(start)
		st.OutputBytes += len(out)
		bw.WriteString(out)
		bw.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return st, fmt.Errorf("read input: %w", err)
	}
	return st, nil
}
