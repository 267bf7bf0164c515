// Package pipeline runs text through catalog filters for the CLI, the HTTP
// API, the gRPC service, the MCP tools and the Kafka stream.
//
// Every entry point goes through a [Runner] so filters are resolved,
// compiled and cached the same way everywhere.
//
// # Stages
//
//  1. Compile: load the definition from a [catalog.Source] and assemble it.
//     Compiled filters are memoized by id until [Runner.Invalidate].
//  2. Transform: run the text through a fresh session. Results are cached
//     under the hash of the canonical definition and the text, so editing a
//     definition never serves stale output.
//
// # Usage
//
//	runner := pipeline.NewRunner(catalog.Builtin(), cache.NewMemoryCache(0), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Filter: "pirate", Text: "Hello my friend!"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Output)
//
// Stateful filters that must continue across texts (a chat, a Kafka
// partition) use [Runner.Session] instead and bypass the result cache.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/errors"
)

// Options describes one transform request.
// This struct supports JSON serialization for API requests.
type Options struct {
	Filter  string `json:"filter"`
	Text    string `json:"text"`
	Refresh bool   `json:"refresh,omitempty"` // Skip the result cache lookup

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Filter is the normalized filter id.
	Filter string

	// Output is the transformed text.
	Output string

	// DefinitionHash is the content hash of the canonical definition.
	DefinitionHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit a cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Stages        int
	InputBytes    int
	OutputBytes   int
	CompileTime   time.Duration
	TransformTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CompileHit bool // Filter was already compiled
	ResultHit  bool // Output came from the result cache
}

// ValidateAndSetDefaults normalizes the filter id and checks the text.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Filter == "" {
		return errors.New(errors.ErrCodeInvalidInput, "filter is required")
	}
	o.Filter = catalog.NormalizeID(o.Filter)
	if err := errors.ValidateFilterName(o.Filter); err != nil {
		return err
	}
	if err := errors.ValidateText(o.Text); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}
