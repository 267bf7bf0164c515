package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/talklike/pkg/cache"
	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/core/filter"
	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/observability"
	"github.com/matzehuels/talklike/pkg/observability/tracing"
)

// Compiled is an assembled filter together with the definition it came from.
type Compiled struct {
	ID         string
	Definition *definition.Definition
	Filter     *filter.Filter
	// Hash is the content hash of the canonical JSON form of Definition.
	Hash string
}

// Runner resolves, compiles and runs filters with caching.
//
// A Runner is safe for concurrent use. Compiled filters are immutable and
// shared; every transform gets its own session.
type Runner struct {
	Source catalog.Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	tracer trace.Tracer
	group  singleflight.Group

	mu         sync.RWMutex
	compiled   map[string]*Compiled
	generation uint64
}

// NewRunner creates a runner over src.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(src catalog.Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if src == nil {
		src = catalog.Builtin()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source:   src,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		tracer:   tracing.Tracer(),
		compiled: make(map[string]*Compiled),
	}
}

// Execute compiles opts.Filter if needed and transforms opts.Text.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	ctx, span := r.tracer.Start(ctx, "pipeline.Execute",
		trace.WithAttributes(attribute.String("talklike.filter", opts.Filter)))
	defer span.End()

	compileStart := time.Now()
	c, hit, err := r.CompileWithCacheInfo(ctx, opts.Filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compile")
		return nil, err
	}
	result, err := r.run(ctx, c, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transform")
		return nil, err
	}
	result.CacheInfo.CompileHit = hit
	result.Stats.CompileTime = time.Since(compileStart) - result.Stats.TransformTime
	span.SetAttributes(
		attribute.Bool("talklike.compile_hit", hit),
		attribute.Bool("talklike.result_hit", result.CacheInfo.ResultHit),
	)
	return result, nil
}

// ExecuteCompiled transforms opts.Text with an already compiled filter,
// such as one built from a file outside the catalog. opts.Filter is ignored.
func (r *Runner) ExecuteCompiled(ctx context.Context, c *Compiled, opts Options) (*Result, error) {
	opts.Filter = c.ID
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	ctx, span := r.tracer.Start(ctx, "pipeline.ExecuteCompiled",
		trace.WithAttributes(attribute.String("talklike.filter", c.ID)))
	defer span.End()
	return r.run(ctx, c, opts)
}

func (r *Runner) run(ctx context.Context, c *Compiled, opts Options) (*Result, error) {
	hooks := observability.Pipeline()
	hooks.OnTransformStart(ctx, c.ID, len(opts.Text))

	start := time.Now()
	output, hit := r.transform(ctx, c, opts.Text, opts.Refresh)
	elapsed := time.Since(start)
	hooks.OnTransformComplete(ctx, c.ID, len(output), elapsed, nil)

	opts.Logger.Debug("transformed",
		"filter", c.ID,
		"bytes", len(opts.Text),
		"cached", hit,
		"duration", elapsed)

	return &Result{
		Filter:         c.ID,
		Output:         output,
		DefinitionHash: c.Hash,
		Stats: Stats{
			Stages:        len(c.Filter.Stages()),
			InputBytes:    len(opts.Text),
			OutputBytes:   len(output),
			TransformTime: elapsed,
		},
		CacheInfo: CacheInfo{ResultHit: hit},
	}, nil
}

// transform consults the result cache. Cache failures degrade to computing
// the output; they are logged, never returned.
func (r *Runner) transform(ctx context.Context, c *Compiled, text string, refresh bool) (string, bool) {
	key := r.Keyer.TransformKey(c.Hash, text)
	if !refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("result cache", "err", err)
		case hit:
			observability.Cache().OnCacheHit(ctx, "transform")
			return string(data), true
		default:
			observability.Cache().OnCacheMiss(ctx, "transform")
		}
	}

	output := c.Filter.NewSession().Transform(text)

	if err := r.Cache.Set(ctx, key, []byte(output), cache.TTLTransform); err != nil {
		r.Logger.Warn("result cache", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "transform", len(output))
	}
	return output, false
}

// CompileWithCacheInfo returns the compiled filter for id and whether it
// was already memoized. Concurrent compiles of one id share a single load.
func (r *Runner) CompileWithCacheInfo(ctx context.Context, id string) (*Compiled, bool, error) {
	id = catalog.NormalizeID(id)
	if err := errors.ValidateFilterName(id); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	c, ok := r.compiled[id]
	gen := r.generation
	r.mu.RUnlock()
	if ok {
		return c, true, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		return r.compile(ctx, id, gen)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Compiled), false, nil
}

// Compile is a convenience wrapper that discards the cache hit info.
func (r *Runner) Compile(ctx context.Context, id string) (*Compiled, error) {
	c, _, err := r.CompileWithCacheInfo(ctx, id)
	return c, err
}

func (r *Runner) compile(ctx context.Context, id string, gen uint64) (*Compiled, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.Compile",
		trace.WithAttributes(attribute.String("talklike.filter", id)))
	defer span.End()

	hooks := observability.Pipeline()
	hooks.OnCompileStart(ctx, id)
	start := time.Now()

	def, err := r.Source.Load(ctx, id)
	var c *Compiled
	if err == nil {
		c, err = CompileDefinition(id, def)
	}
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compile")
		hooks.OnCompileComplete(ctx, id, 0, elapsed, err)
		r.Logger.Debug("compile failed", "filter", id, "err", err)
		return nil, err
	}
	hooks.OnCompileComplete(ctx, id, len(c.Filter.Stages()), elapsed, nil)
	span.SetAttributes(attribute.Int("talklike.stages", len(c.Filter.Stages())))
	r.Logger.Debug("compiled filter",
		"filter", id,
		"stages", c.Filter.Kinds(),
		"duration", elapsed)

	r.mu.Lock()
	if r.generation == gen {
		r.compiled[id] = c
	}
	r.mu.Unlock()
	return c, nil
}

// CompileDefinition assembles def outside any catalog.
func CompileDefinition(id string, def *definition.Definition) (*Compiled, error) {
	f, err := filter.Assemble(def)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", id, err)
	}
	canonical, err := json.Marshal(def)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash filter %s", id)
	}
	return &Compiled{ID: id, Definition: def, Filter: f, Hash: cache.Hash(canonical)}, nil
}

// Session compiles id and starts a session whose state carries across
// texts. Sessions bypass the result cache.
func (r *Runner) Session(ctx context.Context, id string) (*filter.Session, error) {
	c, err := r.Compile(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Filter.NewSession(), nil
}

// Describe returns the stage chain of id.
func (r *Runner) Describe(ctx context.Context, id string) ([]filter.StageInfo, error) {
	c, err := r.Compile(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Filter.Describe(), nil
}

// List returns the filters of the runner's source.
func (r *Runner) List(ctx context.Context) ([]catalog.Entry, error) {
	return r.Source.List(ctx)
}

// Invalidate drops the memoized filters for ids, or all of them when ids is
// empty. Compiles already in flight are not memoized.
func (r *Runner) Invalidate(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	if len(ids) == 0 {
		clear(r.compiled)
		return
	}
	for _, id := range ids {
		id = catalog.NormalizeID(id)
		delete(r.compiled, id)
		r.group.Forget(id)
	}
}

// Watch invalidates filters whenever their files change in dirs.
func (r *Runner) Watch(ctx context.Context, dirs []string) (*catalog.Watcher, error) {
	return catalog.Watch(ctx, dirs, catalog.DefaultDebounce, r.Logger, func(ids []string) {
		r.Logger.Info("reloading filters", "ids", ids)
		r.Invalidate(ids...)
	})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
