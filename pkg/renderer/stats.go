package renderer

import (
	"math"

	"github.com/prism-render/prism/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int     // Total number of pixels rendered
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel
	MaxSamples     int     // Maximum samples allowed per pixel
	MinSamples     int     // Minimum samples taken per pixel
	MaxSamplesUsed int     // Maximum samples actually used by any pixel
}

// PixelStats accumulates radiance samples for one pixel, along with the
// luminance moments that drive adaptive sampling
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator for the final result
	LuminanceAccum   float64   // Luminance accumulator for convergence
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of samples taken
}

// AddSample adds a new radiance sample to the pixel statistics
func (ps *PixelStats) AddSample(sample core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(sample)
	luminance := sample.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// RelativeError returns the coefficient of variation of the pixel's
// luminance estimate. Near-black pixels report 0 once their variance is
// negligible, so they can converge too.
func (ps *PixelStats) RelativeError() float64 {
	if ps.SampleCount == 0 {
		return math.Inf(1)
	}

	mean := ps.LuminanceAccum / float64(ps.SampleCount)
	meanSq := ps.LuminanceSqAccum / float64(ps.SampleCount)
	variance := math.Max(0, meanSq-mean*mean)

	if mean <= 1e-8 {
		if variance < 1e-6 {
			return 0
		}
		return math.Inf(1)
	}

	return math.Sqrt(variance) / mean
}
