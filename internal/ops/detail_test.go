package ops

import (
	"math"
	"testing"
)

func TestSharpenBoostsEdge(t *testing.T) {
	b := stepBuffer(64, 64)
	before := edgeContrast(b)
	Sharpen(b, 80, 1.5)
	after := edgeContrast(b)
	if after <= before {
		t.Errorf("sharpen: edge contrast %g -> %g, want increase", before, after)
	}
}

func TestSharpenZeroAmountNoOp(t *testing.T) {
	b := stepBuffer(16, 16)
	want := b.Clone()
	Sharpen(b, 0, 2.5)
	if !buffersEqual(b, want) {
		t.Error("zero sharpen amount must be an exact no-op")
	}
}

func TestVignetteDarkensCornersOnly(t *testing.T) {
	b := flatBuffer(64, 64, 128)
	center := (32*64 + 32) * 3
	corner := 0
	centerBefore := b.Pix[center]

	Vignette(b, -80)

	if b.Pix[corner] >= b.Pix[center] {
		t.Errorf("corner %g should be darker than center %g", b.Pix[corner], b.Pix[center])
	}
	if diff := math.Abs(float64(b.Pix[center] - centerBefore)); diff > 5e-3 {
		t.Errorf("center moved by %g under vignette", diff)
	}
}

func TestVignettePositiveBrightensCorners(t *testing.T) {
	b := flatBuffer(64, 64, 128)
	before := b.Pix[0]
	Vignette(b, 60)
	if b.Pix[0] <= before {
		t.Error("positive vignette should brighten the corners")
	}
}

func TestGrainDeterministicPerSeed(t *testing.T) {
	a := flatBuffer(32, 32, 128)
	b := flatBuffer(32, 32, 128)
	Grain(a, 50, 1234)
	Grain(b, 50, 1234)
	if !buffersEqual(a, b) {
		t.Error("same seed must produce identical grain")
	}

	c := flatBuffer(32, 32, 128)
	Grain(c, 50, 5678)
	if buffersEqual(a, c) {
		t.Error("different seeds must produce different grain")
	}
}

func TestGrainIsMonochromatic(t *testing.T) {
	b := flatBuffer(16, 16, 128)
	Grain(b, 80, 42)
	for i := 0; i < len(b.Pix); i += 3 {
		if b.Pix[i] != b.Pix[i+1] || b.Pix[i+1] != b.Pix[i+2] {
			t.Fatalf("pixel %d: grain must hit all channels equally, got (%g, %g, %g)",
				i/3, b.Pix[i], b.Pix[i+1], b.Pix[i+2])
		}
	}
}

func TestGrainAmplitudeBounded(t *testing.T) {
	b := flatBuffer(64, 64, 128)
	Grain(b, 100, 7)
	base := float32(128.0 / 255)
	for i, v := range b.Pix {
		if diff := math.Abs(float64(v - base)); diff > 0.05 {
			t.Fatalf("pixel %d deviates by %g, grain should stay subtle", i, diff)
		}
	}
}

func TestDetailNeutralNoOps(t *testing.T) {
	apply := map[string]func(*Buffer){
		"vignette": func(b *Buffer) { Vignette(b, 0) },
		"grain":    func(b *Buffer) { Grain(b, 0, 99) },
	}
	for name, fn := range apply {
		t.Run(name, func(t *testing.T) {
			b := stepBuffer(16, 16)
			want := b.Clone()
			fn(b)
			if !buffersEqual(b, want) {
				t.Errorf("%s at zero must be an exact no-op", name)
			}
		})
	}
}
