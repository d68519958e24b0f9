package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"github.com/gradekit/gradekit/internal/params"
)

// ErrBadSource reports a nil or zero-dimension source image. This is a
// resource error, fatal for the render call; the engine never retries on
// its own.
var ErrBadSource = errors.New("source image is nil or has zero dimension")

// Source is a decoded image plus a stable identity for fingerprinting.
// The image is read concurrently by renders and must not be mutated while
// the engine holds a reference to it.
type Source struct {
	ID    string
	Image image.Image
}

func (s Source) check() error {
	if s.Image == nil {
		return ErrBadSource
	}
	b := s.Image.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%dx%d: %w", b.Dx(), b.Dy(), ErrBadSource)
	}
	return nil
}

// flight tracks one in-progress render so concurrent identical requests
// share its result instead of recomputing.
type flight struct {
	done   chan struct{}
	raster *Raster
	err    error
}

// Engine renders graded rasters. It owns the render cache, the in-flight
// deduplication table and the worker gate; construct one per process (or
// per test) rather than sharing ambient global state.
type Engine struct {
	log     *slog.Logger
	workers chan struct{}
	cache   *rasterCache

	mu       sync.Mutex
	inflight map[params.Fingerprint]*flight
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. By default the engine is silent.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithWorkers bounds the number of renders executing pixel work at once.
// The default is runtime.NumCPU(); one render occupies one worker for its
// duration.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = make(chan struct{}, n)
		}
	}
}

// WithCacheCapacity sets the per-shard raster cache capacity (16 shards).
func WithCacheCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cache = newRasterCache(n)
		}
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:      slog.New(discardHandler{}),
		workers:  make(chan struct{}, runtime.NumCPU()),
		cache:    newRasterCache(8),
		inflight: make(map[params.Fingerprint]*flight),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Preview renders a bounded-size raster for interactive display. The
// source is downsampled to fit maxDim before any operator runs; operator
// strength is resolution invariant, so the preview is a faithful reduction
// of what Export produces.
func (e *Engine) Preview(ctx context.Context, src Source, p params.ColorParams, locals []params.LocalAdjustment, maxDim int) (*Raster, error) {
	return e.render(ctx, src, p, locals, params.KindPreview, maxDim)
}

// Export renders at full source resolution. Exports are fingerprinted
// separately from previews and run to completion once started.
func (e *Engine) Export(ctx context.Context, src Source, p params.ColorParams, locals []params.LocalAdjustment) (*Raster, error) {
	return e.render(ctx, src, p, locals, params.KindExport, 0)
}

// CacheStats reports render cache effectiveness.
func (e *Engine) CacheStats() CacheStats {
	return e.cache.stats()
}

func (e *Engine) render(ctx context.Context, src Source, p params.ColorParams, locals []params.LocalAdjustment, kind params.RenderKind, maxDim int) (*Raster, error) {
	if err := src.check(); err != nil {
		return nil, err
	}
	clamped, clampedLocals, err := prepare(p, locals)
	if err != nil {
		return nil, err
	}

	fp := params.RenderFingerprint(src.ID, kind, maxDim, clamped, clampedLocals)
	if r, ok := e.cache.get(fp); ok {
		e.log.Debug("render cache hit", "fingerprint", fp.String()[:12], "source", src.ID)
		return r, nil
	}

	// Join an identical in-flight render, or become its leader.
	e.mu.Lock()
	if f, ok := e.inflight[fp]; ok {
		e.mu.Unlock()
		select {
		case <-f.done:
			return f.raster, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	e.inflight[fp] = f
	e.mu.Unlock()

	f.raster, f.err = e.run(ctx, src, clamped, clampedLocals, maxDim, fp)

	e.mu.Lock()
	delete(e.inflight, fp)
	e.mu.Unlock()
	close(f.done)

	return f.raster, f.err
}

// run occupies one worker slot for the duration of the pixel work. The
// pixel math itself never blocks; the only suspension points are here at
// admission and in the caller's I/O.
func (e *Engine) run(ctx context.Context, src Source, p params.ColorParams, locals []params.LocalAdjustment, maxDim int, fp params.Fingerprint) (*Raster, error) {
	select {
	case e.workers <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.workers }()

	r := renderPipeline(src.Image, p, locals, maxDim, fp.Seed64())
	e.cache.add(fp, r)
	e.log.Debug("render complete",
		"fingerprint", fp.String()[:12],
		"source", src.ID,
		"size", fmt.Sprintf("%dx%d", r.W, r.H),
		"locals", len(locals))
	return r, nil
}

// discardHandler drops all records. Enabled returns false so disabled
// logging costs nothing on the render path.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
