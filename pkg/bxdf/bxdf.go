package bxdf

import (
	"math"

	"github.com/prism-render/prism/pkg/core"
)

// TransportMode distinguishes radiance transport (camera paths) from
// importance transport (light paths); refraction scales radiance but not
// importance
type TransportMode int

const (
	Radiance TransportMode = iota
	Importance
)

// Sample is the result of importance-sampling a scattering function
type Sample struct {
	Wi      core.Vec3 // sampled incident direction
	PDF     float64
	F       core.Vec3 // BxDF value for (wo, Wi)
	Sampled Kind      // kind of the lobe that produced the sample
}

// BxDF is a single scattering function expressed in the local shading frame
// (+Z is the surface normal). F and PDF are zero for delta lobes, which can
// only be evaluated through SampleF.
type BxDF interface {
	Kind() Kind
	F(wo, wi core.Vec3) core.Vec3
	SampleF(wo core.Vec3, sampler core.Sampler) Sample
	PDF(wo, wi core.Vec3) float64
}

// Reflector is implemented by lobes that can report hemispherical
// reflectance (albedo)
type Reflector interface {
	Rho() core.Vec3
}

// CosineSampleF is the default sampling strategy for non-delta lobes: a
// cosine-weighted direction mirrored into wo's hemisphere
func CosineSampleF(b BxDF, wo core.Vec3, sampler core.Sampler) Sample {
	wi := core.SampleCosineHemisphere(sampler.Get2D())
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	return Sample{
		Wi:      wi,
		PDF:     CosinePDF(wo, wi),
		F:       b.F(wo, wi),
		Sampled: b.Kind(),
	}
}

// CosinePDF is the pdf of CosineSampleF: |cos θi|/π when wi and wo share a
// hemisphere, 0 otherwise
func CosinePDF(wo, wi core.Vec3) float64 {
	if SameHemisphere(wo, wi) {
		return AbsCosTheta(wi) / math.Pi
	}
	return 0
}

// Lambertian is a perfectly diffuse reflector
type Lambertian struct {
	Albedo core.Vec3
}

func (l *Lambertian) Kind() Kind {
	return Diffuse | Reflection
}

func (l *Lambertian) F(wo, wi core.Vec3) core.Vec3 {
	return l.Albedo.Multiply(1.0 / math.Pi)
}

func (l *Lambertian) SampleF(wo core.Vec3, sampler core.Sampler) Sample {
	return CosineSampleF(l, wo, sampler)
}

func (l *Lambertian) PDF(wo, wi core.Vec3) float64 {
	return CosinePDF(wo, wi)
}

// Rho returns the hemispherical reflectance, which for a Lambertian lobe is
// the albedo itself
func (l *Lambertian) Rho() core.Vec3 {
	return l.Albedo
}

// Scaled wraps a lobe and attenuates everything it returns by a constant
// factor
type Scaled struct {
	Scale float64
	Inner BxDF
}

func (s *Scaled) Kind() Kind {
	return s.Inner.Kind()
}

func (s *Scaled) F(wo, wi core.Vec3) core.Vec3 {
	return s.Inner.F(wo, wi).Multiply(s.Scale)
}

func (s *Scaled) SampleF(wo core.Vec3, sampler core.Sampler) Sample {
	sample := s.Inner.SampleF(wo, sampler)
	sample.F = sample.F.Multiply(s.Scale)
	return sample
}

func (s *Scaled) PDF(wo, wi core.Vec3) float64 {
	return s.Inner.PDF(wo, wi)
}

func (s *Scaled) Rho() core.Vec3 {
	if r, ok := s.Inner.(Reflector); ok {
		return r.Rho().Multiply(s.Scale)
	}
	return core.Vec3{}
}
