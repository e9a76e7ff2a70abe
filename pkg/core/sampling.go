package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// SampleCosineHemisphere generates a cosine-weighted direction in the +Z
// hemisphere of the local shading frame
func SampleCosineHemisphere(sample Vec2) Vec3 {
	phi := 2.0 * math.Pi * sample.X
	r := math.Sqrt(sample.Y)
	z := math.Sqrt(max(0, 1.0-sample.Y))
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// CosineHemispherePDF returns the pdf of SampleCosineHemisphere for a
// direction with the given z component
func CosineHemispherePDF(cosTheta float64) float64 {
	return math.Abs(cosTheta) / math.Pi
}

// SampleUniformSphere generates a uniform random direction on the unit sphere
func SampleUniformSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SampleConcentricDisk maps a uniform square sample to the unit disk,
// avoiding rejection sampling
func SampleConcentricDisk(sample Vec2) Vec2 {
	uOffset := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if uOffset.X == 0 && uOffset.Y == 0 {
		return NewVec2(0, 0)
	}

	var theta, r float64
	if math.Abs(uOffset.X) > math.Abs(uOffset.Y) {
		r = uOffset.X
		theta = math.Pi / 4 * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = math.Pi/2 - math.Pi/4*(uOffset.X/uOffset.Y)
	}

	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// PowerHeuristic computes the power heuristic (β=2) weight for multiple
// importance sampling between two strategies with nf and ng samples
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}
