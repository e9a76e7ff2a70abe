package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prism-render/prism/pkg/bxdf"
	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/geometry"
	"github.com/prism-render/prism/pkg/lights"
	"github.com/prism-render/prism/pkg/loaders"
	"github.com/prism-render/prism/pkg/material"
	"github.com/prism-render/prism/pkg/scene"
)

func testSampler(seed int64) core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(seed)))
}

func matteMaterial(albedo core.Vec3) material.Disney {
	return material.Disney{
		BaseColor: material.ColorTexture{Value: albedo},
		Roughness: material.ScalarTexture{Value: 1.0},
		IOR:       material.ScalarTexture{Value: 1.5},
	}
}

func unitSphereAt(p core.Vec3, mat material.Disney) *scene.Object {
	return &scene.Object{
		Shape:    geometry.Sphere{Radius: 1},
		Position: p,
		Rotation: mgl64.QuatIdent(),
		Material: mat,
	}
}

func constantEnvironment(value core.Vec3) *lights.Environment {
	img := &loaders.ImageData{Width: 4, Height: 2, Pixels: make([]core.Vec3, 8)}
	for i := range img.Pixels {
		img.Pixels[i] = value
	}
	return lights.NewEnvironment(img, 1.0)
}

func TestRayColorDirectLighting(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.6, 0.4)
	sc := &scene.Scene{
		Objects: []*scene.Object{unitSphereAt(core.Vec3{}, matteMaterial(albedo))},
		Lights: []lights.Light{
			&lights.DirectionalLight{
				Direction: core.NewVec3(0, 0, -1),
				Radiance:  core.NewVec3(2, 2, 2),
			},
		},
	}

	pi := NewPathIntegrator(8)
	arena := bxdf.NewArena()
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	// Head-on at the apex the specular lobe's fresnel vanishes, leaving
	// the scaled Lambertian: albedo/π · cosθ · Li with cosθ = 1. Indirect
	// bounces escape into empty sky and add nothing.
	got := pi.RayColor(ray, sc, arena, testSampler(1), NopRecorder{})
	expected := albedo.Multiply(2.0 / math.Pi)
	if got.Subtract(expected).Length() > 1e-9 {
		t.Errorf("got %v, expected %v", got, expected)
	}
}

func TestRayColorBackdropAtCameraRay(t *testing.T) {
	env := constantEnvironment(core.NewVec3(0.25, 0.5, 0.75))
	sc := &scene.Scene{Lights: []lights.Light{env}}

	pi := NewPathIntegrator(4)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	got := pi.RayColor(ray, sc, bxdf.NewArena(), testSampler(2), NopRecorder{})
	expected := env.Le(ray)
	if got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("got %v, expected %v", got, expected)
	}
}

func TestRayColorAmbientIsNotBackdrop(t *testing.T) {
	sc := &scene.Scene{
		Lights: []lights.Light{&lights.AmbientLight{Radiance: core.NewVec3(1, 1, 1)}},
	}

	pi := NewPathIntegrator(4)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	got := pi.RayColor(ray, sc, bxdf.NewArena(), testSampler(3), NopRecorder{})
	if !got.IsBlack() {
		t.Errorf("ambient light should not appear as backdrop, got %v", got)
	}
}

func TestRayColorAreaLightHit(t *testing.T) {
	sc := &scene.Scene{
		Lights: []lights.Light{
			&lights.AreaLight{
				Position: core.Vec3{},
				Rotation: mgl64.QuatIdent(),
				Shape:    geometry.Sphere{Radius: 1},
				Radiance: core.NewVec3(7, 7, 7),
			},
		},
	}

	pi := NewPathIntegrator(4)
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	rec := &TraceRecorder{}
	got := pi.RayColor(ray, sc, bxdf.NewArena(), testSampler(4), rec)
	if got != core.NewVec3(7, 7, 7) {
		t.Errorf("got %v, expected the light's radiance", got)
	}
	if rec.Reason != TermLight {
		t.Errorf("termination: got %v", rec.Reason)
	}
}

func TestRayColorIgnoredAborts(t *testing.T) {
	sc := &scene.Scene{
		Objects: []*scene.Object{unitSphereAt(core.Vec3{}, matteMaterial(core.NewVec3(1, 1, 1)))},
	}

	pi := NewPathIntegrator(4)
	// Camera sitting on the surface, looking inward
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	rec := &TraceRecorder{}
	got := pi.RayColor(ray, sc, bxdf.NewArena(), testSampler(5), rec)
	if !got.IsBlack() {
		t.Errorf("got %v, expected black", got)
	}
	if rec.Reason != TermIgnored {
		t.Errorf("termination: got %v", rec.Reason)
	}
}

func TestRayColorSpecularBounceSeesBackdrop(t *testing.T) {
	// A smooth metal mirror at the apex reflects the camera ray back into
	// the sky; the specular bounce re-includes the environment
	mirror := material.Disney{
		BaseColor: material.ColorTexture{Value: core.NewVec3(1, 1, 1)},
		Metallic:  material.ScalarTexture{Value: 1.0},
		Roughness: material.ScalarTexture{Value: 0.0},
		IOR:       material.ScalarTexture{Value: 1.5},
	}
	env := constantEnvironment(core.NewVec3(1, 1, 1))
	sc := &scene.Scene{
		Objects: []*scene.Object{unitSphereAt(core.Vec3{}, mirror)},
		Lights:  []lights.Light{env},
	}

	pi := NewPathIntegrator(4)
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	rec := &TraceRecorder{}
	got := pi.RayColor(ray, sc, bxdf.NewArena(), testSampler(6), rec)
	if got.IsBlack() {
		t.Fatal("specular bounce into the sky should carry the environment")
	}
	if len(rec.Bounces) == 0 || !rec.Bounces[0].Sample.Sampled.Has(bxdf.Specular) {
		t.Error("first bounce should be specular")
	}
	if rec.Reason != TermMiss {
		t.Errorf("termination: got %v", rec.Reason)
	}
}

func TestRayColorBounceLimit(t *testing.T) {
	sc := &scene.Scene{
		Lights: []lights.Light{&lights.PointLight{Position: core.NewVec3(0, 5, 0), Radiance: core.NewVec3(1, 1, 1)}},
	}

	pi := NewPathIntegrator(0)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	rec := &TraceRecorder{}
	got := pi.RayColor(ray, sc, bxdf.NewArena(), testSampler(7), rec)
	if !got.IsBlack() {
		t.Errorf("zero bounces should yield black, got %v", got)
	}
	if rec.Reason != TermBounceLimit {
		t.Errorf("termination: got %v", rec.Reason)
	}
}

func TestRayColorAmbientConverges(t *testing.T) {
	// A matte sphere under uniform ambient light: the apex radiance
	// estimate converges to albedo·L plus a small grazing-fresnel term
	// from the rough specular lobe
	albedo := core.NewVec3(0.5, 0.5, 0.5)
	sc := &scene.Scene{
		Objects: []*scene.Object{unitSphereAt(core.Vec3{}, matteMaterial(albedo))},
		Lights:  []lights.Light{&lights.AmbientLight{Radiance: core.NewVec3(1, 1, 1)}},
	}

	pi := NewPathIntegrator(8)
	arena := bxdf.NewArena()
	sampler := testSampler(8)
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	var sum core.Vec3
	const n = 8000
	for i := 0; i < n; i++ {
		sum = sum.Add(pi.RayColor(ray, sc, arena, sampler, NopRecorder{}))
	}
	mean := sum.Multiply(1.0 / n)
	if mean.X < 0.45 || mean.X > 0.65 {
		t.Errorf("ambient estimate: got %f, expected near 0.5", mean.X)
	}
}
