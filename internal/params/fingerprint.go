package params

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// Fingerprint is a deterministic digest of one render's full input set:
// source identity, render kind and target size, the complete parameter set
// and the ordered local adjustment list. Identical fingerprints mean
// pixel-identical output, so the render cache and the in-flight deduplicator
// key on it.
type Fingerprint [sha256.Size]byte

// String returns the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// RenderKind separates preview and export fingerprints so a full-resolution
// export never short-circuits to a downsampled preview raster.
type RenderKind byte

// Render kinds.
const (
	KindPreview RenderKind = 'p'
	KindExport  RenderKind = 'e'
)

type digestWriter struct {
	h hash.Hash
}

func (w *digestWriter) f64(v float64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	w.h.Write(buf[:])
}

func (w *digestWriter) i64(v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	w.h.Write(buf[:])
}

func (w *digestWriter) str(s string) {
	w.i64(int64(len(s)))
	w.h.Write([]byte(s))
}

func (w *digestWriter) curve(pts []CurvePoint) {
	w.i64(int64(len(pts)))
	for _, p := range pts {
		w.f64(p[0])
		w.f64(p[1])
	}
}

func (w *digestWriter) band(b HSLBand) {
	w.f64(b.Hue)
	w.f64(b.Saturation)
	w.f64(b.Luminance)
}

func (w *digestWriter) params(p ColorParams) {
	w.str(p.Version)

	w.f64(p.Basic.Exposure)
	w.f64(p.Basic.Contrast)
	w.f64(p.Basic.Highlights)
	w.f64(p.Basic.Shadows)
	w.f64(p.Basic.Whites)
	w.f64(p.Basic.Blacks)

	w.f64(p.Color.Temperature)
	w.f64(p.Color.Tint)
	w.f64(p.Color.Vibrance)
	w.f64(p.Color.Saturation)

	w.curve(p.ToneCurve.Points)
	w.curve(p.ToneCurve.Red)
	w.curve(p.ToneCurve.Green)
	w.curve(p.ToneCurve.Blue)

	w.band(p.HSL.Red)
	w.band(p.HSL.Orange)
	w.band(p.HSL.Yellow)
	w.band(p.HSL.Green)
	w.band(p.HSL.Aqua)
	w.band(p.HSL.Blue)
	w.band(p.HSL.Purple)
	w.band(p.HSL.Magenta)

	w.f64(p.SplitToning.Highlights.Hue)
	w.f64(p.SplitToning.Highlights.Saturation)
	w.f64(p.SplitToning.Midtones.Hue)
	w.f64(p.SplitToning.Midtones.Saturation)
	w.f64(p.SplitToning.Shadows.Hue)
	w.f64(p.SplitToning.Shadows.Saturation)
	w.f64(p.SplitToning.Balance)

	w.f64(p.Effects.Clarity)
	w.f64(p.Effects.Texture)
	w.f64(p.Effects.Dehaze)
	w.f64(p.Effects.Fade)
	w.f64(p.Effects.Sharpening)
	w.f64(p.Effects.SharpenRadius)
	w.f64(p.Effects.Vignette)
	w.f64(p.Effects.Grain)
}

// RenderFingerprint computes the digest for one render call. The encoding is
// a fixed field order over sha256, so it is stable across processes and
// requires no canonical JSON step.
func RenderFingerprint(sourceID string, kind RenderKind, maxDim int, p ColorParams, locals []LocalAdjustment) Fingerprint {
	w := &digestWriter{h: sha256.New()}
	w.str(sourceID)
	w.h.Write([]byte{byte(kind)})
	w.i64(int64(maxDim))
	w.params(p)
	w.i64(int64(len(locals)))
	for _, l := range locals {
		w.str(string(l.Region.Type))
		w.f64(l.Region.X)
		w.f64(l.Region.Y)
		w.f64(l.Region.Width)
		w.f64(l.Region.Height)
		w.f64(l.Region.Feather)
		w.params(l.Params)
	}

	var f Fingerprint
	w.h.Sum(f[:0])
	return f
}

// Seed64 folds the fingerprint down to 64 bits for seeding the grain
// noise generator. Repeated renders of the same inputs therefore produce
// pixel-identical grain.
func (f Fingerprint) Seed64() int64 {
	return int64(binary.BigEndian.Uint64(f[:8]))
}
