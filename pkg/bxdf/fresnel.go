package bxdf

import (
	"math"

	"github.com/prism-render/prism/pkg/core"
)

// Fresnel computes the fraction of light reflected at a boundary for a
// given cosine of the incident angle
type Fresnel interface {
	Evaluate(cosI float64) core.Vec3
}

// FrDielectric computes the exact unpolarized Fresnel reflectance at a
// dielectric boundary. A negative cosI means the ray arrives from inside
// the medium and the indices are swapped.
func FrDielectric(cosI, etaI, etaT float64) float64 {
	if cosI <= 0 {
		etaI, etaT = etaT, etaI
		cosI = math.Abs(cosI)
	}

	sinI := math.Sqrt(max(0, 1.0-cosI*cosI))
	sinT := etaI / etaT * sinI
	if sinT >= 1 {
		return 1 // total internal reflection
	}
	cosT := math.Sqrt(max(0, 1.0-sinT*sinT))

	rParl := (etaT*cosI - etaI*cosT) / (etaT*cosI + etaI*cosT)
	rPerp := (etaI*cosI - etaT*cosT) / (etaI*cosI + etaT*cosT)
	return (rParl*rParl + rPerp*rPerp) / 2.0
}

// FrSchlick computes the Schlick approximation from the reflectance at
// normal incidence. cosI is the angle between wi and wo; the half-angle
// identity recovers cos θd, the angle between the half vector and wo,
// since for mirror reflection θd = θi/2.
func FrSchlick(r0 core.Vec3, cosI float64) core.Vec3 {
	cosD := math.Sqrt((cosI + 1.0) / 2.0)
	p := max(0, min(1, 1.0-cosD))
	p5 := p * p * p * p * p
	white := core.NewVec3(1, 1, 1)
	return r0.Add(white.Subtract(r0).Multiply(p5))
}

// SchlickR0FromEta converts a relative index of refraction to reflectance
// at normal incidence
func SchlickR0FromEta(eta float64) float64 {
	r := (eta - 1.0) / (eta + 1.0)
	return r * r
}

// FresnelDielectric is the exact dielectric Fresnel term between two media
type FresnelDielectric struct {
	EtaI, EtaT float64
}

func (f FresnelDielectric) Evaluate(cosI float64) core.Vec3 {
	fr := FrDielectric(cosI, f.EtaI, f.EtaT)
	return core.NewVec3(fr, fr, fr)
}

// FresnelSchlick is the Schlick approximation around a normal-incidence
// reflectance color
type FresnelSchlick struct {
	R0 core.Vec3
}

func (f FresnelSchlick) Evaluate(cosI float64) core.Vec3 {
	return FrSchlick(f.R0, cosI)
}

// FresnelDisney blends the exact dielectric term with the Schlick term by
// the material's metallic parameter
type FresnelDisney struct {
	Eta      float64
	R0       core.Vec3
	Metallic float64
}

func (f FresnelDisney) Evaluate(cosI float64) core.Vec3 {
	schlick := FrSchlick(f.R0, cosI)
	d := FrDielectric(cosI, 1.0, f.Eta)
	dielectric := core.NewVec3(d, d, d)
	return dielectric.Lerp(schlick, f.Metallic)
}
