package bxdf

import (
	"math"

	"github.com/prism-render/prism/pkg/core"
)

// TrowbridgeReitz is the GGX microfacet normal distribution with separate
// roughness along the tangent (AlphaX) and cotangent (AlphaY) axes
type TrowbridgeReitz struct {
	AlphaX, AlphaY float64
}

// NewTrowbridgeReitz clamps both roughness values away from zero so the
// distribution stays integrable
func NewTrowbridgeReitz(alphaX, alphaY float64) TrowbridgeReitz {
	return TrowbridgeReitz{
		AlphaX: max(alphaX, 0.001),
		AlphaY: max(alphaY, 0.001),
	}
}

// IsSpecular reports whether the surface is smooth enough to treat as a
// delta reflector for sampling purposes
func (d TrowbridgeReitz) IsSpecular() bool {
	return d.AlphaX < 0.04 && d.AlphaY < 0.04
}

// D returns the differential area of microfacets aligned with the half
// vector wh
func (d TrowbridgeReitz) D(wh core.Vec3) float64 {
	tan2Theta := Tan2Theta(wh)
	if math.IsInf(tan2Theta, 0) {
		return 0
	}
	cos4Theta := Cos2Theta(wh) * Cos2Theta(wh)
	e := (Cos2Phi(wh)/(d.AlphaX*d.AlphaX) + Sin2Phi(wh)/(d.AlphaY*d.AlphaY)) * tan2Theta
	return 1.0 / (math.Pi * d.AlphaX * d.AlphaY * cos4Theta * (1 + e) * (1 + e))
}

// Lambda is the Smith auxiliary function measuring invisible masked
// microfacet area per visible area along w
func (d TrowbridgeReitz) Lambda(w core.Vec3) float64 {
	absTanTheta := math.Abs(TanTheta(w))
	if math.IsInf(absTanTheta, 0) {
		return 0
	}
	alpha := math.Sqrt(Cos2Phi(w)*d.AlphaX*d.AlphaX + Sin2Phi(w)*d.AlphaY*d.AlphaY)
	alpha2Tan2Theta := (alpha * absTanTheta) * (alpha * absTanTheta)
	return (-1 + math.Sqrt(1+alpha2Tan2Theta)) / 2
}

// G1 is the masking term for a single direction
func (d TrowbridgeReitz) G1(w core.Vec3) float64 {
	return 1.0 / (1.0 + d.Lambda(w))
}

// G is the joint masking-shadowing term for an outgoing/incoming pair
func (d TrowbridgeReitz) G(wo, wi core.Vec3) float64 {
	return 1.0 / (1.0 + d.Lambda(wo) + d.Lambda(wi))
}

// SampleWH samples a half vector from the distribution of normals visible
// from wo
func (d TrowbridgeReitz) SampleWH(wo core.Vec3, u core.Vec2) core.Vec3 {
	flip := wo.Z < 0
	if flip {
		wo = wo.Negate()
	}
	wh := trowbridgeReitzSample(wo, d.AlphaX, d.AlphaY, u.X, u.Y)
	if flip {
		wh = wh.Negate()
	}
	return wh
}

// PDF returns the probability density of SampleWH producing wh
func (d TrowbridgeReitz) PDF(wo, wh core.Vec3) float64 {
	return d.D(wh) * d.G1(wo) * math.Abs(wo.Dot(wh)) / AbsCosTheta(wo)
}

// trowbridgeReitzSample draws a visible-normal sample by stretching wo into
// the alpha=1 configuration, sampling slopes there, and unstretching
func trowbridgeReitzSample(wi core.Vec3, alphaX, alphaY, u1, u2 float64) core.Vec3 {
	wiStretched := core.NewVec3(alphaX*wi.X, alphaY*wi.Y, wi.Z).Normalize()

	slopeX, slopeY := trowbridgeReitzSample11(CosTheta(wiStretched), u1, u2)

	// Rotate the slopes into the stretched direction's azimuth
	tmp := CosPhi(wiStretched)*slopeX - SinPhi(wiStretched)*slopeY
	slopeY = SinPhi(wiStretched)*slopeX + CosPhi(wiStretched)*slopeY
	slopeX = tmp

	slopeX *= alphaX
	slopeY *= alphaY

	return core.NewVec3(-slopeX, -slopeY, 1).Normalize()
}

// trowbridgeReitzSample11 samples microfacet slopes for the isotropic
// alpha=1 distribution seen from a direction with the given cos θ
func trowbridgeReitzSample11(cosTheta, u1, u2 float64) (float64, float64) {
	// Normal incidence: sample the slopes uniformly in angle
	if cosTheta > 0.9999 {
		r := math.Sqrt(u1 / (1 - u1))
		phi := 2 * math.Pi * u2
		return r * math.Cos(phi), r * math.Sin(phi)
	}

	sinTheta := math.Sqrt(max(0, 1.0-cosTheta*cosTheta))
	tanTheta := sinTheta / cosTheta
	a := 1.0 / tanTheta
	g1 := 2.0 / (1.0 + math.Sqrt(1.0+1.0/(a*a)))

	// Sample slopeX
	A := 2.0*u1/g1 - 1.0
	tmp := 1.0 / (A*A - 1.0)
	if tmp > 1e10 {
		tmp = 1e10
	}
	b := tanTheta
	discr := math.Sqrt(max(0, b*b*tmp*tmp-(A*A-b*b)*tmp))
	slopeX1 := b*tmp - discr
	slopeX2 := b*tmp + discr
	slopeX := slopeX2
	if A < 0 || slopeX2 > 1.0/tanTheta {
		slopeX = slopeX1
	}

	// Sample slopeY
	s := -1.0
	if u2 > 0.5 {
		s = 1.0
		u2 = 2.0 * (u2 - 0.5)
	} else {
		u2 = 2.0 * (0.5 - u2)
	}
	z := (u2 * (u2*(u2*0.27385-0.73369) + 0.46341)) /
		(u2*(u2*(u2*0.093073+0.309420)-1.0) + 0.597999)
	slopeY := s * z * (1.0 + slopeX*slopeX)

	return slopeX, slopeY
}

// MicrofacetReflection is glossy reflection from a rough surface governed
// by a Trowbridge-Reitz distribution
type MicrofacetReflection struct {
	Color        core.Vec3
	Distribution TrowbridgeReitz
	Fresnel      Fresnel
}

func (m *MicrofacetReflection) Kind() Kind {
	if m.Distribution.IsSpecular() {
		return Reflection | Glossy | Specular
	}
	return Reflection | Glossy
}

func (m *MicrofacetReflection) F(wo, wi core.Vec3) core.Vec3 {
	cosThetaO := CosTheta(wo)
	cosThetaI := CosTheta(wi)
	wh := wo.Add(wi)
	if cosThetaI == 0 || cosThetaO == 0 || wh.IsBlack() {
		return core.Vec3{}
	}
	wh = wh.Normalize()
	dfg := m.Fresnel.Evaluate(wi.Dot(wo)).
		Multiply(m.Distribution.D(wh) * m.Distribution.G(wo, wi))
	return dfg.MultiplyVec(m.Color).Multiply(1.0 / (4 * cosThetaI * cosThetaO))
}

func (m *MicrofacetReflection) SampleF(wo core.Vec3, sampler core.Sampler) Sample {
	sample := Sample{Sampled: m.Kind()}
	wh := m.Distribution.SampleWH(wo, sampler.Get2D())
	wi := Reflect(wo, wh)
	if !SameHemisphere(wo, wi) {
		return sample
	}
	sample.Wi = wi
	sample.PDF = m.Distribution.PDF(wo, wh) / (4 * wo.Dot(wh))
	sample.F = m.F(wo, wi)
	return sample
}

func (m *MicrofacetReflection) PDF(wo, wi core.Vec3) float64 {
	if !SameHemisphere(wo, wi) {
		return 0
	}
	wh := wo.Add(wi).Normalize()
	return m.Distribution.PDF(wo, wh) / (4 * wo.Dot(wh))
}
