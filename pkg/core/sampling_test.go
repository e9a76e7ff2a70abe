package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleCosineHemisphere(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	sampler := NewRandomSampler(random)

	numSamples := 20000
	sumCos := 0.0
	for i := 0; i < numSamples; i++ {
		w := SampleCosineHemisphere(sampler.Get2D())

		if w.Z < 0 {
			t.Fatalf("sample below hemisphere: %v", w)
		}
		if math.Abs(w.Length()-1.0) > 1e-9 {
			t.Fatalf("sample not unit length: %v (len %f)", w, w.Length())
		}
		sumCos += w.Z
	}

	// For cosine-weighted sampling E[cos θ] = 2/3
	meanCos := sumCos / float64(numSamples)
	if math.Abs(meanCos-2.0/3.0) > 0.01 {
		t.Errorf("mean cos θ: got %f, expected %f", meanCos, 2.0/3.0)
	}
}

func TestSampleConcentricDisk(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	sampler := NewRandomSampler(random)

	inInnerHalf := 0
	numSamples := 20000
	for i := 0; i < numSamples; i++ {
		p := SampleConcentricDisk(sampler.Get2D())
		r2 := p.X*p.X + p.Y*p.Y
		if r2 > 1.0+1e-9 {
			t.Fatalf("sample outside unit disk: %v", p)
		}
		if r2 <= 0.5 {
			inInnerHalf++
		}
	}

	// Uniform area sampling puts half the samples inside r = sqrt(0.5)
	frac := float64(inInnerHalf) / float64(numSamples)
	if math.Abs(frac-0.5) > 0.02 {
		t.Errorf("inner-half fraction: got %f, expected 0.5", frac)
	}

	// Degenerate center sample maps to the origin
	if p := SampleConcentricDisk(NewVec2(0.5, 0.5)); p != NewVec2(0, 0) {
		t.Errorf("center sample: got %v, expected origin", p)
	}
}

func TestSampleUniformSphere(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	sampler := NewRandomSampler(random)

	sumZ := 0.0
	numSamples := 20000
	for i := 0; i < numSamples; i++ {
		w := SampleUniformSphere(sampler.Get2D())
		if math.Abs(w.Length()-1.0) > 1e-9 {
			t.Fatalf("sample not unit length: %v", w)
		}
		sumZ += w.Z
	}

	if math.Abs(sumZ/float64(numSamples)) > 0.02 {
		t.Errorf("mean z: got %f, expected 0", sumZ/float64(numSamples))
	}
}

func TestPowerHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		nf       int
		fPdf     float64
		ng       int
		gPdf     float64
		expected float64
	}{
		{"equal pdfs", 1, 1.0, 1, 1.0, 0.5},
		{"zero g pdf", 1, 1.0, 1, 0.0, 1.0},
		{"zero f pdf", 1, 0.0, 1, 1.0, 0.0},
		{"both zero", 1, 0.0, 1, 0.0, 0.0},
		{"f dominant", 1, 10.0, 1, 1.0, 100.0 / 101.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PowerHeuristic(tt.nf, tt.fPdf, tt.ng, tt.gPdf)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("PowerHeuristic: got %f, expected %f", result, tt.expected)
			}
		})
	}
}

func TestPowerHeuristicComplementary(t *testing.T) {
	// Weights for the two strategies over the same pair of pdfs sum to 1
	random := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		fPdf := random.Float64() * 10
		gPdf := random.Float64() * 10
		sum := PowerHeuristic(1, fPdf, 1, gPdf) + PowerHeuristic(1, gPdf, 1, fPdf)
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("weights sum to %f for pdfs (%f, %f)", sum, fPdf, gPdf)
		}
	}
}
