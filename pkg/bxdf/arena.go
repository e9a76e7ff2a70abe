package bxdf

import (
	"github.com/prism-render/prism/pkg/core"
)

// Arena bump-allocates the per-hit scattering structures so the integrator
// can build a fresh BSDF for every bounce without garbage-collector
// pressure. Reset reclaims everything at once; nothing built from an arena
// may outlive the sample that produced it.
type Arena struct {
	bsdfs         []BSDF
	lambertians   []Lambertian
	scaled        []Scaled
	reflections   []SpecularReflection
	transmissions []SpecularTransmission
	fresnels      []FresnelSpecular
	microfacets   []MicrofacetReflection
}

// NewArena creates an arena with room for a typical path's worth of lobes
func NewArena() *Arena {
	return &Arena{
		bsdfs:       make([]BSDF, 0, 16),
		lambertians: make([]Lambertian, 0, 16),
		scaled:      make([]Scaled, 0, 16),
		microfacets: make([]MicrofacetReflection, 0, 16),
	}
}

// Reset reclaims all allocations for reuse
func (a *Arena) Reset() {
	a.bsdfs = a.bsdfs[:0]
	a.lambertians = a.lambertians[:0]
	a.scaled = a.scaled[:0]
	a.reflections = a.reflections[:0]
	a.transmissions = a.transmissions[:0]
	a.fresnels = a.fresnels[:0]
	a.microfacets = a.microfacets[:0]
}

// NewBSDF allocates an empty aggregate for a shading frame
func (a *Arena) NewBSDF(normal, tangent core.Vec3) *BSDF {
	a.bsdfs = append(a.bsdfs, NewBSDF(normal, tangent))
	return &a.bsdfs[len(a.bsdfs)-1]
}

// NewLambertian allocates a diffuse lobe
func (a *Arena) NewLambertian(albedo core.Vec3) *Lambertian {
	a.lambertians = append(a.lambertians, Lambertian{Albedo: albedo})
	return &a.lambertians[len(a.lambertians)-1]
}

// NewScaled allocates a scaling wrapper around another lobe
func (a *Arena) NewScaled(scale float64, inner BxDF) *Scaled {
	a.scaled = append(a.scaled, Scaled{Scale: scale, Inner: inner})
	return &a.scaled[len(a.scaled)-1]
}

// NewSpecularReflection allocates a mirror lobe
func (a *Arena) NewSpecularReflection(color core.Vec3, fresnel Fresnel) *SpecularReflection {
	a.reflections = append(a.reflections, SpecularReflection{Color: color, Fresnel: fresnel})
	return &a.reflections[len(a.reflections)-1]
}

// NewSpecularTransmission allocates a refractive lobe
func (a *Arena) NewSpecularTransmission(color core.Vec3, etaA, etaB float64, mode TransportMode) *SpecularTransmission {
	a.transmissions = append(a.transmissions, SpecularTransmission{
		Color:   color,
		EtaA:    etaA,
		EtaB:    etaB,
		Fresnel: FresnelDielectric{EtaI: etaA, EtaT: etaB},
		Mode:    mode,
	})
	return &a.transmissions[len(a.transmissions)-1]
}

// NewFresnelSpecular allocates a combined reflect/refract lobe
func (a *Arena) NewFresnelSpecular(color core.Vec3, etaA, etaB float64, mode TransportMode) *FresnelSpecular {
	a.fresnels = append(a.fresnels, FresnelSpecular{Color: color, EtaA: etaA, EtaB: etaB, Mode: mode})
	return &a.fresnels[len(a.fresnels)-1]
}

// NewMicrofacetReflection allocates a glossy lobe
func (a *Arena) NewMicrofacetReflection(color core.Vec3, dist TrowbridgeReitz, fresnel Fresnel) *MicrofacetReflection {
	a.microfacets = append(a.microfacets, MicrofacetReflection{
		Color:        color,
		Distribution: dist,
		Fresnel:      fresnel,
	})
	return &a.microfacets[len(a.microfacets)-1]
}
