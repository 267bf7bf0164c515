// Package pkg provides the core libraries for talklike text filters.
//
// # Overview
//
// Talklike rewrites text in the voice of a character. A filter is a fixed
// pipeline of stages (word substitutions, character substitutions, suffix
// and prefix rewrites, sentence augmentations, Lua scripts and algorithmic
// effects) assembled from a declarative definition. The pkg directory is
// organized into four main areas:
//
//  1. [core] - The engine: case projection, pattern compilation, stages,
//     and filter assembly
//  2. [definition], [io], [catalog] - Filter definitions, their JSON, YAML
//     and TOML encodings, and where they are found
//  3. [pipeline] - Orchestration (resolve, compile, transform, cache)
//  4. [server], [rpc], [stream], [mcptool] - Entry points over HTTP, gRPC,
//     Kafka and MCP
//
// # Architecture
//
// The typical data flow through talklike:
//
//	Definition file / MongoDB / remote catalog / built-ins
//	         ↓
//	    [catalog] package (find and decode the definition)
//	         ↓
//	    [core/filter] package (assemble stages in canonical order)
//	         ↓
//	    [pipeline] package (memoize, run a session, cache the result)
//	         ↓
//	    CLI, HTTP, gRPC, Kafka or MCP response
//
// # Quick Start
//
// Transform text with a built-in filter:
//
//	runner := pipeline.NewRunner(catalog.Builtin(), cache.NewMemoryCache(0), nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Filter: "pirate",
//	    Text:   "Hello my friend!",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Output) // Ahoy me hearty! ...
//
// Assemble a filter directly, without a catalog:
//
//	def, _ := io.Import("filters/valley_1980s.yaml")
//	f, _ := filter.Assemble(def)
//	session := f.NewSession()
//	fmt.Println(session.Transform("That is really good."))
//
// # Main Packages
//
// ## Core Engine
//
// [core/casing] - Projects the capitalization pattern of matched text onto
// its replacement.
//
// [core/rules] - Compiles substitution maps into longest-first alternations
// with Unicode word boundaries and optional case folding.
//
// [core/stage] - The stage kinds: substitution, morphology, translation,
// sentence augmentation, Lua scripts, and the glitch, studly, lolcat and
// duck modules.
//
// [core/rng] - Seeded generator so algorithmic stages are reproducible.
//
// [core/filter] - Assembles a definition into an ordered stage chain and
// runs it, statelessly or through a session.
//
// ## Definitions and Catalog
//
// [definition] - The declarative filter model and its validation.
//
// [io] - JSON, YAML and TOML decoding and encoding, script file inlining.
//
// [catalog] - Filter sources (directories, embedded built-ins, MongoDB,
// remote HTTP catalogs), display names, lint and hot reload.
//
// ## Infrastructure
//
// [cache] - Cache interface with file, memory, Redis and null backends,
// content hashing and key scoping.
//
// [httputil] - HTTP client with retry and response caching.
//
// [errors] - Structured error codes shared by every entry point.
//
// [observability] - Hook interfaces, Prometheus metrics and OpenTelemetry
// tracing.
//
// [render/nodelink] - Stage chain diagrams using Graphviz.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                # All tests
//	go test ./pkg/core/...           # Engine only
//	go test -run Example ./pkg/...   # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/core
// [core/casing]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/core/casing
// [core/rules]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/core/rules
// [core/stage]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/core/stage
// [core/rng]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/core/rng
// [core/filter]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/core/filter
// [definition]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/definition
// [io]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/io
// [catalog]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/catalog
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/server
// [rpc]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/rpc
// [stream]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/stream
// [mcptool]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/mcptool
// [cache]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/observability
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/talklike/pkg/render/nodelink
package pkg
