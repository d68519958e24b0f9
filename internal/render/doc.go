// Package render orchestrates the color grading pipeline.
//
// The Engine is the deterministic core of the system: given a decoded
// source image, a ColorParams value and a list of local adjustments, it
// produces a graded 8-bit RGB raster. Preview renders downsample the source
// first; export renders run at full resolution. Both apply the same
// operators in the same fixed order, so a preview is a faithful small
// rendition of the export.
//
// # Caching and scheduling
//
// Every render is keyed by a fingerprint of its complete input set. The
// engine holds a bounded raster cache (identical fingerprints short-circuit
// without pixel work) and deduplicates concurrent identical renders so at
// most one executes while the rest wait for its result. A worker gate sized
// to the CPU count bounds parallel pixel work.
//
// # Sessions
//
// A Session provides last-request-wins semantics for interactive previews:
// each request gets a monotonically increasing sequence number, and a
// result is flagged stale when a newer request was issued before it
// finished. Cancellation is advisory; a stale render simply is not shown.
//
// The engine performs no file or network I/O and never mutates
// caller-owned parameter values.
package render
