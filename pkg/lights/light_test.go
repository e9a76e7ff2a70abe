package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/prism-render/prism/pkg/core"
)

func testSampler(seed int64) core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(seed)))
}

func TestPointLightFalloff(t *testing.T) {
	l := &PointLight{
		Position: core.NewVec3(0, 3, 0),
		Radiance: core.NewVec3(8, 8, 8),
	}

	wi, pdf, li := l.SampleLi(core.NewVec3(0, 0, 0), testSampler(1))
	if wi.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("wi: got %v, expected +Y", wi)
	}
	if pdf != 1 {
		t.Errorf("pdf: got %f, expected 1", pdf)
	}
	// Radiance divides by (distance+1)² = 16
	if math.Abs(li.X-0.5) > 1e-12 {
		t.Errorf("li: got %v, expected 0.5", li)
	}

	if !l.Kind().IsDelta() {
		t.Error("point light should be delta")
	}
	if l.PdfLi(wi) != 0 {
		t.Error("delta light PdfLi should be 0")
	}
	if !l.Le(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))).IsBlack() {
		t.Error("point light Le should be black")
	}
}

func TestSpotLightCone(t *testing.T) {
	l := &SpotLight{
		Position:   core.NewVec3(0, 5, 0),
		Direction:  core.NewVec3(0, -1, 0),
		CosAngle:   math.Cos(45 * math.Pi / 180),
		CosFalloff: math.Cos(10 * math.Pi / 180),
		Radiance:   core.NewVec3(1, 1, 1),
	}

	// Directly below: inside the full-strength cone
	wi, pdf, li := l.SampleLi(core.NewVec3(0, 0, 0), testSampler(2))
	if pdf != 1 || li.IsBlack() {
		t.Errorf("inside cone: pdf %f, li %v", pdf, li)
	}
	expected := 1.0 / 36.0 // (distance+1)²
	if math.Abs(li.X-expected) > 1e-12 {
		t.Errorf("inside cone li: got %f, expected %f", li.X, expected)
	}
	if wi.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("wi: got %v", wi)
	}

	// Far to the side: outside the cone entirely
	_, pdf, li = l.SampleLi(core.NewVec3(100, 0, 0), testSampler(3))
	if pdf != 0 || !li.IsBlack() {
		t.Errorf("outside cone: pdf %f, li %v", pdf, li)
	}

	// Between the cones the falloff is quartic in the normalized offset
	mid := (l.CosAngle + l.CosFalloff) / 2
	delta := (mid - l.CosAngle) / (l.CosFalloff - l.CosAngle)
	if got := l.falloff(mid); math.Abs(got-math.Pow(delta, 4)) > 1e-12 {
		t.Errorf("falloff: got %f, expected %f", got, math.Pow(delta, 4))
	}
}

func TestDirectionalLight(t *testing.T) {
	l := &DirectionalLight{
		Direction: core.NewVec3(0, -1, 0),
		Radiance:  core.NewVec3(2, 3, 4),
	}

	wi, pdf, li := l.SampleLi(core.NewVec3(5, 5, 5), testSampler(4))
	if wi.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("wi should oppose the travel direction: %v", wi)
	}
	if pdf != 1 {
		t.Errorf("pdf: got %f", pdf)
	}
	if li != l.Radiance {
		t.Errorf("li: got %v, no distance falloff expected", li)
	}
	if !l.Kind().IsDelta() {
		t.Error("directional light should be delta")
	}
}

func TestAmbientLight(t *testing.T) {
	l := &AmbientLight{Radiance: core.NewVec3(0.5, 0.5, 0.5)}

	if l.Kind().IsDelta() {
		t.Error("ambient light should not be delta")
	}
	if !l.Kind().Has(Infinite) || !l.Kind().Has(NoBackground) {
		t.Errorf("kind: got %v", l.Kind())
	}

	sampler := testSampler(5)
	expectedPdf := 1.0 / (4 * math.Pi)
	for i := 0; i < 100; i++ {
		wi, pdf, li := l.SampleLi(core.NewVec3(0, 0, 0), sampler)
		if math.Abs(pdf-expectedPdf) > 1e-12 {
			t.Fatalf("pdf: got %f, expected %f", pdf, expectedPdf)
		}
		if math.Abs(wi.Length()-1) > 1e-9 {
			t.Fatalf("wi not unit: %v", wi)
		}
		if li != l.Radiance {
			t.Fatalf("li: got %v", li)
		}
	}
	if math.Abs(l.PdfLi(core.NewVec3(0, 0, 1))-expectedPdf) > 1e-12 {
		t.Error("PdfLi should be the uniform sphere pdf")
	}
}

func TestAreaLightNotSampleable(t *testing.T) {
	l := &AreaLight{Radiance: core.NewVec3(5, 5, 5)}

	_, pdf, li := l.SampleLi(core.NewVec3(0, 0, 0), testSampler(6))
	if pdf != 0 || !li.IsBlack() {
		t.Errorf("area light SampleLi: pdf %f, li %v", pdf, li)
	}
	if l.PdfLi(core.NewVec3(0, 1, 0)) != 0 {
		t.Error("area light PdfLi should be 0")
	}
	if l.Le(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))) != l.Radiance {
		t.Error("area light Le should return its radiance")
	}
	if !l.Kind().Has(Area) || l.Kind().IsDelta() {
		t.Errorf("kind: got %v", l.Kind())
	}
}
