// Package server exposes the grading engine over stdio JSON-RPC 2.0.
//
// The server is a thin collaborator around the render engine: it owns the
// decoded-source store and one preview Session per source, and maps engine
// results and errors onto the wire. It performs no pixel math of its own.
//
// # Protocol
//
// Line-delimited JSON-RPC 2.0 on stdin/stdout (one request or response per
// line). Methods:
//
//   - initialize: server identity handshake.
//   - ping: liveness check.
//   - source/load: decode an image file, returning a content-addressed
//     source_id and the pixel dimensions.
//   - source/evict: release a decoded source and its preview session.
//   - grade/preview: render a bounded-size preview (base64 JPEG). The
//     result carries a stale flag when a newer preview for the same source
//     was requested before this one finished.
//   - grade/export: render at full resolution and encode to jpeg, png or
//     tiff at the requested quality.
//
// grade/preview requests are handled concurrently, so their responses may
// arrive out of order relative to the request stream; clients match them
// by request ID. All other methods are handled serially in arrival order.
//
// # Error mapping
//
// Malformed JSON is a parse error (-32700); unknown methods -32601;
// missing sources, non-monotonic tone curves and unsupported region types
// are invalid params (-32602); I/O and render failures use -32000.
// Out-of-range numeric parameter values are never errors; the engine
// clamps them.
package server
