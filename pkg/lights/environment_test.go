package lights

import (
	"math"
	"testing"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/loaders"
)

func gradientImage(width, height int) *loaders.ImageData {
	img := &loaders.ImageData{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := float64(x+y*width+1) / float64(width*height)
			img.Pixels[y*width+x] = core.NewVec3(v, v, v)
		}
	}
	return img
}

func TestEnvironmentLeMapping(t *testing.T) {
	img := gradientImage(4, 2)
	env := NewEnvironment(img, 2.0)

	// +Z maps to the image center: u = 0.5, v = 0.5
	le := env.Le(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)))
	expected := img.At(2, 1).Multiply(2.0)
	if le.Subtract(expected).Length() > 1e-12 {
		t.Errorf("+Z: got %v, expected %v", le, expected)
	}

	// Straight up is the top row, u = 0.5 at v = 0
	le = env.Le(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)))
	expected = img.At(2, 0).Multiply(2.0)
	if le.Subtract(expected).Length() > 1e-12 {
		t.Errorf("+Y: got %v, expected %v", le, expected)
	}

	// -Z maps to u = 1, clamped to the right edge
	le = env.Le(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)))
	expected = img.At(3, 1).Multiply(2.0)
	if le.Subtract(expected).Length() > 1e-12 {
		t.Errorf("-Z: got %v, expected %v", le, expected)
	}
}

func TestEnvironmentSampleLiConsistency(t *testing.T) {
	env := NewEnvironment(gradientImage(8, 4), 1.0)
	sampler := testSampler(42)

	for i := 0; i < 500; i++ {
		wi, pdf, li := env.SampleLi(core.NewVec3(0, 0, 0), sampler)
		if pdf == 0 {
			continue
		}
		if math.Abs(wi.Length()-1) > 1e-9 {
			t.Fatalf("wi not unit: %v", wi)
		}
		if li.IsBlack() {
			t.Fatalf("sampled a black texel at %v", wi)
		}
		// PdfLi must agree with the density SampleLi reported
		if got := env.PdfLi(wi); math.Abs(got-pdf)/pdf > 1e-6 {
			t.Fatalf("pdf mismatch: SampleLi %g, PdfLi %g for %v", pdf, got, wi)
		}
	}
}

func TestEnvironmentImportanceSampling(t *testing.T) {
	// One bright texel in an otherwise dim image: most samples should land
	// in its direction
	img := &loaders.ImageData{
		Width:  4,
		Height: 2,
		Pixels: make([]core.Vec3, 8),
	}
	for i := range img.Pixels {
		img.Pixels[i] = core.NewVec3(0.01, 0.01, 0.01)
	}
	img.Pixels[1*4+2] = core.NewVec3(100, 100, 100) // u ∈ [0.5, 0.75), lower row

	env := NewEnvironment(img, 1.0)
	sampler := testSampler(7)

	bright := 0
	const n = 2000
	for i := 0; i < n; i++ {
		_, pdf, li := env.SampleLi(core.Vec3{}, sampler)
		if pdf == 0 {
			continue
		}
		if li.X > 1 {
			bright++
		}
	}
	if float64(bright)/n < 0.95 {
		t.Errorf("bright texel hit rate: %f, expected near 1", float64(bright)/n)
	}
}

func TestEnvironmentPolePdfZero(t *testing.T) {
	env := NewEnvironment(gradientImage(4, 2), 1.0)
	if pdf := env.PdfLi(core.NewVec3(0, 1, 0)); pdf != 0 {
		t.Errorf("pole pdf: got %g, expected 0", pdf)
	}
	if pdf := env.PdfLi(core.NewVec3(0, -1, 0)); pdf != 0 {
		t.Errorf("pole pdf: got %g, expected 0", pdf)
	}
}

func TestEnvironmentPdfIntegratesToOne(t *testing.T) {
	env := NewEnvironment(gradientImage(8, 4), 1.0)

	// Riemann sum of PdfLi over the sphere in spherical coordinates
	const n = 128
	sum := 0.0
	for i := 0; i < n; i++ {
		theta := math.Pi * (float64(i) + 0.5) / n
		for j := 0; j < 2*n; j++ {
			phi := 2*math.Pi*(float64(j)+0.5)/(2*n) - math.Pi
			wi := core.NewVec3(
				math.Sin(theta)*math.Sin(phi),
				math.Cos(theta),
				math.Sin(theta)*math.Cos(phi),
			)
			sum += env.PdfLi(wi) * math.Sin(theta) * (math.Pi / n) * (math.Pi / n)
		}
	}
	if math.Abs(sum-1) > 0.05 {
		t.Errorf("pdf integral: got %f, expected 1", sum)
	}
}
