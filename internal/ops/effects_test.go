package ops

import (
	"math"
	"testing"
)

// stepBuffer creates a vertical step edge: the left half dark, the right
// half bright. Detail operators respond to the edge; flat regions stay put.
func stepBuffer(w, h int) *Buffer {
	b := NewBuffer(w, h)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float32(0.25)
			if x >= w/2 {
				v = 0.75
			}
			b.Pix[i] = v
			b.Pix[i+1] = v
			b.Pix[i+2] = v
			i += 3
		}
	}
	return b
}

// edgeContrast measures the luminance difference across the step, sampled
// at the pixels immediately either side of the edge at mid-height.
func edgeContrast(b *Buffer) float64 {
	y := b.H / 2
	left := (y*b.W + b.W/2 - 1) * 3
	right := (y*b.W + b.W/2) * 3
	ll := luminance(b.Pix[left], b.Pix[left+1], b.Pix[left+2])
	lr := luminance(b.Pix[right], b.Pix[right+1], b.Pix[right+2])
	return float64(lr - ll)
}

func TestClarityBoostsLocalContrast(t *testing.T) {
	b := stepBuffer(64, 64)
	before := edgeContrast(b)
	Clarity(b, 80)
	after := edgeContrast(b)
	if after <= before {
		t.Errorf("positive clarity: edge contrast %g -> %g, want increase", before, after)
	}
}

func TestClarityNegativeSoftens(t *testing.T) {
	b := stepBuffer(64, 64)
	before := edgeContrast(b)
	Clarity(b, -80)
	after := edgeContrast(b)
	if after >= before {
		t.Errorf("negative clarity: edge contrast %g -> %g, want decrease", before, after)
	}
}

func TestTextureBoostsEdge(t *testing.T) {
	b := stepBuffer(64, 64)
	before := edgeContrast(b)
	Texture(b, 80)
	after := edgeContrast(b)
	if after <= before {
		t.Errorf("positive texture: edge contrast %g -> %g, want increase", before, after)
	}
}

func TestClarityLeavesFlatRegions(t *testing.T) {
	b := stepBuffer(64, 64)
	// A pixel well inside the dark half, far from the edge.
	idx := (32*b.W + 4) * 3
	before := b.Pix[idx]
	Clarity(b, 80)
	if diff := math.Abs(float64(b.Pix[idx] - before)); diff > 1e-3 {
		t.Errorf("flat-region pixel moved by %g under clarity", diff)
	}
}

// hazyBuffer simulates a low-contrast scene washed toward a bright veil.
func hazyBuffer(w, h int) *Buffer {
	b := NewBuffer(w, h)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Scene detail compressed into [0.55, 0.85].
			v := 0.55 + 0.3*float32(x)/float32(w-1)
			b.Pix[i] = v
			b.Pix[i+1] = v
			b.Pix[i+2] = v
			i += 3
		}
	}
	return b
}

func TestDehazeExpandsRange(t *testing.T) {
	b := hazyBuffer(64, 64)
	min0, max0 := pixRange(b)
	Dehaze(b, 70)
	min1, max1 := pixRange(b)
	if (max1 - min1) <= (max0 - min0) {
		t.Errorf("dehaze should expand tonal range: [%g, %g] -> [%g, %g]", min0, max0, min1, max1)
	}
	if min1 >= min0 {
		t.Errorf("dehaze should deepen the darkest values: %g -> %g", min0, min1)
	}
}

func pixRange(b *Buffer) (min, max float32) {
	min, max = 1, 0
	for _, v := range b.Pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func TestFadeLiftsBlacks(t *testing.T) {
	b := gradientBuffer(64, 8)
	Fade(b, 100)
	min, max := pixRange(b)
	if min < 0.1 {
		t.Errorf("full fade should lift the black point well off zero, got min %g", min)
	}
	if max >= 1 {
		t.Errorf("full fade should pull the white point down, got max %g", max)
	}
}

func TestFadeMonotoneInAmount(t *testing.T) {
	low := flatBuffer(4, 4, 0)
	high := flatBuffer(4, 4, 0)
	Fade(low, 30)
	Fade(high, 90)
	if high.Pix[0] <= low.Pix[0] {
		t.Errorf("stronger fade should lift black further: %g vs %g", low.Pix[0], high.Pix[0])
	}
}

func TestEffectsNeutralNoOps(t *testing.T) {
	apply := map[string]func(*Buffer){
		"clarity": func(b *Buffer) { Clarity(b, 0) },
		"texture": func(b *Buffer) { Texture(b, 0) },
		"dehaze":  func(b *Buffer) { Dehaze(b, 0) },
		"fade":    func(b *Buffer) { Fade(b, 0) },
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
