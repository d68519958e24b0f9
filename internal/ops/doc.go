// Package ops implements the tone/color operator library.
//
// Every operator is a pure function over a float32 RGB working buffer in
// [0, 1] (gamma-encoded, Rec.709 luminance weights) and is an exact no-op at
// its neutral parameter value. Operators clamp their results to [0, 1].
//
// Effect strengths are resolution invariant: amounts are percentages, and
// the gaussian radii used by clarity, texture and sharpening are derived
// from the image's smaller dimension, so a preview render and a
// full-resolution export of the same parameters look the same.
//
// The fixed application order lives in the render pipeline; this package
// only provides the individual operators.
package ops
