package lights

import (
	"math"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/loaders"
)

// Environment is an image-based light surrounding the scene (HDRI). A 2D
// distribution over the image, weighted by luminance and the sin θ of each
// row, drives importance sampling so bright texels are sampled more often.
type Environment struct {
	image        *loaders.ImageData
	distribution *core.Distribution2D
	strength     float64
}

// NewEnvironment builds the sampling distribution for an environment
// image. Rows near the poles cover less solid angle and are weighted down
// by sin θ.
func NewEnvironment(image *loaders.ImageData, strength float64) *Environment {
	weights := make([][]float64, image.Height)
	for y := 0; y < image.Height; y++ {
		sinTheta := math.Sin(math.Pi * (float64(y) + 0.5) / float64(image.Height))
		row := make([]float64, image.Width)
		for x := 0; x < image.Width; x++ {
			row[x] = image.At(x, y).Luminance() * sinTheta * strength
		}
		weights[y] = row
	}

	return &Environment{
		image:        image,
		distribution: core.NewDistribution2D(weights),
		strength:     strength,
	}
}

// Lookup returns the scaled radiance of the texel at a UV coordinate
func (l *Environment) Lookup(uv core.Vec2) core.Vec3 {
	return l.image.AtUV(uv).Multiply(l.strength)
}

func (l *Environment) Kind() Kind {
	return Infinite
}

// Le maps an escaped ray's direction to lat-long coordinates: u from the
// azimuth around +Y, v from the angle against +Y
func (l *Environment) Le(ray core.Ray) core.Vec3 {
	dir := ray.Direction
	u := (math.Atan2(dir.X, dir.Z) + math.Pi) / (2 * math.Pi)
	v := angleToY(dir) / math.Pi
	return l.Lookup(core.NewVec2(u, v))
}

func (l *Environment) SampleLi(p core.Vec3, sampler core.Sampler) (core.Vec3, float64, core.Vec3) {
	uv, mapPdf := l.distribution.SampleContinuous(sampler.Get2D())
	if mapPdf == 0 {
		return core.Vec3{}, 0, core.Vec3{}
	}

	phi := uv.X*2*math.Pi - math.Pi
	theta := uv.Y * math.Pi
	sinTheta := math.Sin(theta)
	wi := core.NewVec3(
		sinTheta*math.Sin(phi),
		math.Cos(theta),
		sinTheta*math.Cos(phi),
	).Normalize()

	// Change of variables from the image plane to the sphere
	if sinTheta == 0 {
		return wi, 0, l.Lookup(uv)
	}
	pdf := mapPdf / (2 * math.Pi * math.Pi * sinTheta)
	return wi, pdf, l.Lookup(uv)
}

func (l *Environment) PdfLi(wi core.Vec3) float64 {
	theta := angleToY(wi)
	phi := math.Atan2(wi.X, wi.Z) + math.Pi
	sinTheta := math.Sin(theta)
	if sinTheta == 0 {
		return 0
	}
	uv := core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
	return l.distribution.PDF(uv) / (2 * math.Pi * math.Pi * sinTheta)
}

// angleToY returns the angle between a direction and the +Y axis
func angleToY(dir core.Vec3) float64 {
	cos := dir.Y / dir.Length()
	return math.Acos(max(-1, min(1, cos)))
}
