package renderer

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/prism-render/prism/pkg/bxdf"
	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/integrator"
	"github.com/prism-render/prism/pkg/scene"
)

// SamplingConfig contains per-pixel sampling configuration
type SamplingConfig struct {
	SamplesPerPixel    int     // Maximum rays per pixel
	BounceLimit        int     // Maximum path length
	AdaptiveMinSamples float64 // Fraction of max samples before convergence checks start
	AdaptiveThreshold  float64 // Relative luminance error at which a pixel stops sampling
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel:    50,
		BounceLimit:        8,
		AdaptiveMinSamples: 0.15,
		AdaptiveThreshold:  0.02,
	}
}

// Raytracer renders pixels of a scene by path tracing. Each worker owns
// one, so a render holds several; they share the scene but not their
// random state or BSDF arena.
type Raytracer struct {
	scene      *scene.Scene
	camera     *Camera
	integrator *integrator.PathIntegrator
	arena      *bxdf.Arena
	width      int
	height     int
	config     SamplingConfig
}

// NewRaytracer creates a raytracer for a scene, taking sampling defaults
// from the scene's camera where it specifies them
func NewRaytracer(sc *scene.Scene, width, height int) *Raytracer {
	config := DefaultSamplingConfig()
	if sc.Camera.NumSamples > 0 {
		config.SamplesPerPixel = sc.Camera.NumSamples
	}
	if sc.Camera.BounceLimit > 0 {
		config.BounceLimit = sc.Camera.BounceLimit
	}

	return &Raytracer{
		scene:      sc,
		camera:     NewCamera(sc.Camera),
		integrator: integrator.NewPathIntegrator(config.BounceLimit),
		arena:      bxdf.NewArena(),
		width:      width,
		height:     height,
		config:     config,
	}
}

// MergeSamplingConfig overrides the configuration fields that are set in
// the given config, leaving the rest untouched
func (rt *Raytracer) MergeSamplingConfig(config SamplingConfig) {
	if config.SamplesPerPixel > 0 {
		rt.config.SamplesPerPixel = config.SamplesPerPixel
	}
	if config.BounceLimit > 0 {
		rt.config.BounceLimit = config.BounceLimit
		rt.integrator.BounceLimit = config.BounceLimit
	}
	if config.AdaptiveMinSamples > 0 {
		rt.config.AdaptiveMinSamples = config.AdaptiveMinSamples
	}
	if config.AdaptiveThreshold > 0 {
		rt.config.AdaptiveThreshold = config.AdaptiveThreshold
	}
}

// RenderBounds renders all pixels within bounds into the shared pixel
// stats array. Bounds of concurrent calls must not overlap.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, pixelStats [][]PixelStats, random *rand.Rand) RenderStats {
	sampler := core.NewRandomSampler(random)

	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  rt.config.SamplesPerPixel,
		MinSamples:  rt.config.SamplesPerPixel,
	}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			samplesUsed := rt.samplePixel(i, j, &pixelStats[j][i], sampler)
			stats.TotalSamples += samplesUsed
			stats.MinSamples = min(stats.MinSamples, samplesUsed)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
		}
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	return stats
}

// samplePixel takes samples for one pixel until it converges or reaches
// the sample budget, and returns how many samples it took
func (rt *Raytracer) samplePixel(i, j int, ps *PixelStats, sampler core.Sampler) int {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < rt.config.SamplesPerPixel && !rt.shouldStopSampling(ps) {
		ray := rt.camera.GetRay(i, j, sampler)
		sample := rt.integrator.RayColor(ray, rt.scene, rt.arena, sampler, integrator.NopRecorder{})

		// A fireball sample with a non-finite component would poison the
		// accumulator for good; count it as black instead
		if !sample.IsFinite() {
			sample = core.Vec3{}
		}
		ps.AddSample(sample)
	}

	return ps.SampleCount - initialSampleCount
}

// shouldStopSampling reports whether a pixel's luminance estimate has
// converged enough to stop early
func (rt *Raytracer) shouldStopSampling(ps *PixelStats) bool {
	// One sample always has zero variance, so never trust fewer than two
	minSamples := max(2, int(float64(rt.config.SamplesPerPixel)*rt.config.AdaptiveMinSamples))
	if ps.SampleCount < minSamples {
		return false
	}
	return ps.RelativeError() < rt.config.AdaptiveThreshold
}

// vec3ToColor converts linear radiance to a display pixel: LDR scaling,
// gamma correction and clamping
func (rt *Raytracer) vec3ToColor(colorVec core.Vec3) color.RGBA {
	scale := rt.scene.Camera.LDRScale
	if scale == 0 {
		scale = 1
	}

	colorVec = colorVec.Multiply(scale).GammaCorrect(2.0).Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
