package render

import (
	"context"
	"sync/atomic"

	"github.com/gradekit/gradekit/internal/params"
)

// Session provides last-request-wins ordering for one interactive preview
// stream. Every Preview call takes the next sequence number; when the
// render finishes, the result is flagged stale if a newer request was
// issued in the meantime. A stale raster is harmless to have computed,
// since renders have no side effects; the caller just should not display it.
//
// Export renders are deliberately not sequenced; route them through
// Engine.Export directly.
type Session struct {
	engine *Engine
	source Source
	seq    atomic.Uint64
}

// NewSession binds a preview session to one source image.
func NewSession(e *Engine, src Source) *Session {
	return &Session{engine: e, source: src}
}

// Preview renders one interactive preview. stale reports whether a newer
// Preview call on this session was issued before this one completed;
// callers keep the most recent non-stale result on screen.
func (s *Session) Preview(ctx context.Context, p params.ColorParams, locals []params.LocalAdjustment, maxDim int) (r *Raster, stale bool, err error) {
	issue := s.seq.Add(1)
	r, err = s.engine.Preview(ctx, s.source, p, locals, maxDim)
	return r, s.seq.Load() != issue, err
}

// Source returns the session's bound source.
func (s *Session) Source() Source {
	return s.source
}
