// Package params defines the color grading parameter model.
//
// A ColorParams value describes one complete grading edit: basic tonal
// adjustments, white balance and saturation, a tone curve, per-band HSL
// shifts, three-way split toning, and detail/finishing effects. A
// LocalAdjustment pairs a normalized rectangle or ellipse region with its
// own parameter set, applied only inside the region's feathered mask.
//
// # Neutrality and defaults
//
// Every field has a neutral value at which the corresponding operator is an
// exact no-op. Neutral is not always the Go zero value (temperature is
// 6500 K, the sharpen radius is 1.0, the tone curve is a five point identity
// ramp), so ColorParams should be created with Neutral() or decoded with
// DecodeJSON, both of which fill unspecified fields with their neutral
// values.
//
// # Clamping
//
// Out-of-range numeric values are never an error: Clamped() returns a copy
// with every field forced into its declared domain, which is what the render
// pipeline applies before any pixel work. The single validation error in the
// model is a tone curve whose control points are not strictly increasing in
// input; that is surfaced by Validate before rendering starts.
//
// # Immutability
//
// The render engine treats ColorParams and LocalAdjustment values as
// read-only. All mutating helpers (Clamped, canonical encoding) operate on
// copies.
package params
