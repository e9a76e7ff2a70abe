package renderer

import (
	"image"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/geometry"
	"github.com/prism-render/prism/pkg/lights"
	"github.com/prism-render/prism/pkg/material"
	"github.com/prism-render/prism/pkg/scene"
)

func testScene(width, height int) *scene.Scene {
	return &scene.Scene{
		Camera: scene.Camera{
			Position:       core.NewVec3(0, 0, 5),
			Direction:      core.NewVec3(0, 0, -1),
			SensorDistance: 1.0,
			FocusDistance:  5.0,
			BounceLimit:    4,
			NumSamples:     8,
			Width:          width,
			Height:         height,
		},
		Objects: []*scene.Object{
			{
				Shape:    geometry.Sphere{Radius: 1},
				Position: core.Vec3{},
				Rotation: mgl64.QuatIdent(),
				Material: material.Disney{
					BaseColor: material.ColorTexture{Value: core.NewVec3(0.8, 0.4, 0.2)},
					Roughness: material.ScalarTexture{Value: 1.0},
					IOR:       material.ScalarTexture{Value: 1.5},
				},
			},
		},
		Lights: []lights.Light{
			&lights.DirectionalLight{
				Direction: core.NewVec3(0, 0, -1),
				Radiance:  core.NewVec3(2, 2, 2),
			},
		},
	}
}

func newPixelStats(width, height int) [][]PixelStats {
	stats := make([][]PixelStats, height)
	for y := range stats {
		stats[y] = make([]PixelStats, width)
	}
	return stats
}

func TestRaytracerConfigFromScene(t *testing.T) {
	rt := NewRaytracer(testScene(16, 16), 16, 16)
	if rt.config.SamplesPerPixel != 8 {
		t.Errorf("samples: got %d, expected scene value 8", rt.config.SamplesPerPixel)
	}
	if rt.config.BounceLimit != 4 {
		t.Errorf("bounce limit: got %d, expected scene value 4", rt.config.BounceLimit)
	}

	rt.MergeSamplingConfig(SamplingConfig{SamplesPerPixel: 20})
	if rt.config.SamplesPerPixel != 20 {
		t.Errorf("merged samples: got %d", rt.config.SamplesPerPixel)
	}
	// Unset fields keep their values
	if rt.config.BounceLimit != 4 {
		t.Errorf("merge clobbered bounce limit: %d", rt.config.BounceLimit)
	}
}

func TestRenderBounds(t *testing.T) {
	const width, height = 16, 16
	rt := NewRaytracer(testScene(width, height), width, height)
	pixelStats := newPixelStats(width, height)

	bounds := image.Rect(4, 4, 12, 12)
	stats := rt.RenderBounds(bounds, pixelStats, rand.New(rand.NewSource(1)))

	if stats.TotalPixels != 64 {
		t.Errorf("total pixels: got %d", stats.TotalPixels)
	}
	if stats.TotalSamples == 0 {
		t.Error("no samples taken")
	}
	if stats.MinSamples < 1 || stats.MaxSamplesUsed > rt.config.SamplesPerPixel {
		t.Errorf("sample bounds: min %d, max used %d", stats.MinSamples, stats.MaxSamplesUsed)
	}

	// Pixels inside the bounds got samples; pixels outside stayed empty
	if pixelStats[8][8].SampleCount == 0 {
		t.Error("center pixel not sampled")
	}
	if pixelStats[0][0].SampleCount != 0 {
		t.Error("pixel outside bounds was sampled")
	}

	// The sphere fills the image center, so the lit pixel is not black
	if pixelStats[8][8].GetColor().IsBlack() {
		t.Error("center pixel should catch the lit sphere")
	}
}

func TestRenderBoundsAccumulates(t *testing.T) {
	const width, height = 8, 8
	rt := NewRaytracer(testScene(width, height), width, height)
	// AdaptiveMinSamples 1.0 disables early convergence, so every pixel
	// uses its full budget
	rt.MergeSamplingConfig(SamplingConfig{SamplesPerPixel: 4, AdaptiveMinSamples: 1.0})
	pixelStats := newPixelStats(width, height)
	random := rand.New(rand.NewSource(2))

	bounds := image.Rect(0, 0, width, height)
	rt.RenderBounds(bounds, pixelStats, random)
	first := pixelStats[4][4].SampleCount

	// A second pass with a higher budget adds samples on top
	rt.MergeSamplingConfig(SamplingConfig{SamplesPerPixel: 8})
	rt.RenderBounds(bounds, pixelStats, random)
	if pixelStats[4][4].SampleCount != 8 {
		t.Errorf("second pass did not accumulate: %d then %d", first, pixelStats[4][4].SampleCount)
	}
	if first != 4 {
		t.Errorf("first pass: got %d samples, expected 4", first)
	}
}

func TestVec3ToColor(t *testing.T) {
	rt := NewRaytracer(testScene(8, 8), 8, 8)

	// Gamma 2.0: 0.25 -> 0.5
	c := rt.vec3ToColor(core.NewVec3(0.25, 0.25, 0.25))
	if c.R != 127 || c.A != 255 {
		t.Errorf("gamma: got %+v", c)
	}

	// Overbright values clamp instead of wrapping
	c = rt.vec3ToColor(core.NewVec3(5, 5, 5))
	if c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("clamp: got %+v", c)
	}

	c = rt.vec3ToColor(core.Vec3{})
	if c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("black: got %+v", c)
	}
}

func TestVec3ToColorLDRScale(t *testing.T) {
	sc := testScene(8, 8)
	sc.Camera.LDRScale = 4.0
	rt := NewRaytracer(sc, 8, 8)

	// 0.0625 scaled by 4 is 0.25, then gamma to 0.5
	c := rt.vec3ToColor(core.NewVec3(0.0625, 0.0625, 0.0625))
	if c.R != 127 {
		t.Errorf("ldr scale: got %+v", c)
	}
}
