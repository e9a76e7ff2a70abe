package lights

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/geometry"
)

// Kind is a bit set classifying a light for the direct-lighting estimator
type Kind uint8

const (
	// DeltaPosition lights emit from a single point
	DeltaPosition Kind = 1 << iota
	// DeltaDirection lights emit along a single direction
	DeltaDirection
	// Area lights have finite extent and are hit by rays
	Area
	// Infinite lights surround the scene at infinity
	Infinite
	// NoBackground marks infinite lights that never appear as a visible
	// backdrop; they only contribute through direct-light sampling
	NoBackground
)

// Has reports whether all bits of flag are set in k
func (k Kind) Has(flag Kind) bool {
	return k&flag == flag
}

// IsDelta reports whether the light is a delta distribution in position or
// direction, which the estimator cannot hit by sampling the BSDF
func (k Kind) IsDelta() bool {
	return k.Has(DeltaPosition) || k.Has(DeltaDirection)
}

// Light is a source of illumination. SampleLi draws a direction toward the
// light from a receiving point; PdfLi returns the density of SampleLi
// producing a direction (0 for delta lights); Le is the radiance the light
// contributes to a ray that escapes the scene (black for finite lights).
type Light interface {
	Kind() Kind
	Le(ray core.Ray) core.Vec3
	SampleLi(p core.Vec3, sampler core.Sampler) (wi core.Vec3, pdf float64, li core.Vec3)
	PdfLi(wi core.Vec3) float64
}

// PointLight emits uniformly in all directions from a single point, with
// radiance falling off as 1/(distance+1)²
type PointLight struct {
	Position core.Vec3
	Radiance core.Vec3
}

func (l *PointLight) Kind() Kind {
	return DeltaPosition
}

func (l *PointLight) Le(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

func (l *PointLight) SampleLi(p core.Vec3, sampler core.Sampler) (core.Vec3, float64, core.Vec3) {
	toLight := l.Position.Subtract(p)
	distance := toLight.Length()
	wi := toLight.Multiply(1.0 / distance)
	falloff := (distance + 1) * (distance + 1)
	return wi, 1, l.Radiance.Multiply(1.0 / falloff)
}

func (l *PointLight) PdfLi(wi core.Vec3) float64 {
	return 0
}

// SpotLight is a point emitter restricted to a cone. Radiance is full
// inside the falloff cone, fades quartically out to the cone edge and is
// zero beyond it.
type SpotLight struct {
	Position   core.Vec3
	Direction  core.Vec3 // unit vector the cone opens around
	CosAngle   float64   // cosine of the outer cone angle
	CosFalloff float64   // cosine of the inner full-strength angle
	Radiance   core.Vec3
}

func (l *SpotLight) Kind() Kind {
	return DeltaPosition
}

func (l *SpotLight) Le(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

func (l *SpotLight) falloff(cosTheta float64) float64 {
	if cosTheta < l.CosAngle {
		return 0
	}
	if cosTheta > l.CosFalloff {
		return 1
	}
	delta := (cosTheta - l.CosAngle) / (l.CosFalloff - l.CosAngle)
	return delta * delta * delta * delta
}

func (l *SpotLight) SampleLi(p core.Vec3, sampler core.Sampler) (core.Vec3, float64, core.Vec3) {
	toLight := l.Position.Subtract(p)
	distance := toLight.Length()
	wi := toLight.Multiply(1.0 / distance)

	cosWiDir := wi.Negate().Dot(l.Direction)
	if cosWiDir < l.CosAngle {
		return wi, 0, core.Vec3{}
	}
	falloff := (distance + 1) * (distance + 1)
	return wi, 1, l.Radiance.Multiply(l.falloff(cosWiDir) / falloff)
}

func (l *SpotLight) PdfLi(wi core.Vec3) float64 {
	return 0
}

// DirectionalLight illuminates every point from the same direction, as if
// infinitely far away
type DirectionalLight struct {
	Direction core.Vec3 // unit vector the light travels along
	Radiance  core.Vec3
}

func (l *DirectionalLight) Kind() Kind {
	return DeltaDirection
}

func (l *DirectionalLight) Le(ray core.Ray) core.Vec3 {
	return core.Vec3{}
}

func (l *DirectionalLight) SampleLi(p core.Vec3, sampler core.Sampler) (core.Vec3, float64, core.Vec3) {
	return l.Direction.Negate(), 1, l.Radiance
}

func (l *DirectionalLight) PdfLi(wi core.Vec3) float64 {
	return 0
}

// AmbientLight is constant radiance from every direction. It is flagged
// NoBackground so it never shows up as a visible backdrop, only through
// direct-light sampling.
type AmbientLight struct {
	Radiance core.Vec3
}

func (l *AmbientLight) Kind() Kind {
	return Infinite | NoBackground
}

func (l *AmbientLight) Le(ray core.Ray) core.Vec3 {
	return l.Radiance
}

func (l *AmbientLight) SampleLi(p core.Vec3, sampler core.Sampler) (core.Vec3, float64, core.Vec3) {
	wi := core.SampleUniformSphere(sampler.Get2D())
	return wi, 1.0 / (4 * math.Pi), l.Radiance
}

func (l *AmbientLight) PdfLi(wi core.Vec3) float64 {
	return 1.0 / (4 * math.Pi)
}

// AreaLight is an emissive shape. It cannot be sampled directly —
// SampleLi returns pdf 0 — and instead contributes when BSDF-sampled rays
// hit it during scene intersection.
type AreaLight struct {
	Position core.Vec3
	Rotation mgl64.Quat
	Shape    geometry.Sphere
	Radiance core.Vec3
}

func (l *AreaLight) Kind() Kind {
	return Area
}

func (l *AreaLight) Le(ray core.Ray) core.Vec3 {
	return l.Radiance
}

func (l *AreaLight) SampleLi(p core.Vec3, sampler core.Sampler) (core.Vec3, float64, core.Vec3) {
	return core.Vec3{}, 0, core.Vec3{}
}

func (l *AreaLight) PdfLi(wi core.Vec3) float64 {
	return 0
}
