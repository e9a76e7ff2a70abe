package material

import (
	"math"

	"github.com/prism-render/prism/pkg/bxdf"
	"github.com/prism-render/prism/pkg/core"
)

// Disney is the principled material: every parameter is a texture so it
// can vary across a surface. Parameters follow the Disney BRDF naming.
type Disney struct {
	BaseColor      ColorTexture  `json:"base_color"`
	Subsurface     ScalarTexture `json:"subsurface"`
	Metallic       ScalarTexture `json:"metallic"`
	Specular       ScalarTexture `json:"specular"`
	SpecularTint   ScalarTexture `json:"specular_tint"`
	Roughness      ScalarTexture `json:"roughness"`
	Anisotropic    ScalarTexture `json:"anisotropic"`
	Sheen          ScalarTexture `json:"sheen"`
	SheenTint      ScalarTexture `json:"sheen_tint"`
	Clearcoat      ScalarTexture `json:"clearcoat"`
	ClearcoatGloss ScalarTexture `json:"clearcoat_gloss"`
	Transmission   ScalarTexture `json:"transmission"`
	IOR            ScalarTexture `json:"ior"`
}

// Sampled is a Disney material evaluated at one surface point, with every
// texture collapsed to its value there
type Sampled struct {
	BaseColor      core.Vec3
	Subsurface     float64
	Metallic       float64
	Specular       float64
	SpecularTint   float64
	Roughness      float64
	Anisotropic    float64
	Sheen          float64
	SheenTint      float64
	Clearcoat      float64
	ClearcoatGloss float64
	Transmission   float64
	IOR            float64
}

// Sample evaluates every parameter texture at a UV coordinate
func (m *Disney) Sample(uv core.Vec2) Sampled {
	return Sampled{
		BaseColor:      m.BaseColor.At(uv),
		Subsurface:     m.Subsurface.At(uv),
		Metallic:       m.Metallic.At(uv),
		Specular:       m.Specular.At(uv),
		SpecularTint:   m.SpecularTint.At(uv),
		Roughness:      m.Roughness.At(uv),
		Anisotropic:    m.Anisotropic.At(uv),
		Sheen:          m.Sheen.At(uv),
		SheenTint:      m.SheenTint.At(uv),
		Clearcoat:      m.Clearcoat.At(uv),
		ClearcoatGloss: m.ClearcoatGloss.At(uv),
		Transmission:   m.Transmission.At(uv),
		IOR:            m.IOR.At(uv),
	}
}

// LoadTextures loads every image-backed parameter relative to the scene
// directory
func (m *Disney) LoadTextures(dir string) error {
	if err := m.BaseColor.Load(dir); err != nil {
		return err
	}
	scalars := []*ScalarTexture{
		&m.Subsurface, &m.Metallic, &m.Specular, &m.SpecularTint,
		&m.Roughness, &m.Anisotropic, &m.Sheen, &m.SheenTint,
		&m.Clearcoat, &m.ClearcoatGloss, &m.Transmission, &m.IOR,
	}
	for _, t := range scalars {
		if err := t.Load(dir); err != nil {
			return err
		}
	}
	return nil
}

// ComputeScattering assembles the scattering lobes for a sampled material
// into an arena-allocated BSDF:
//
//   - a transmissive material is a single refractive delta lobe
//   - otherwise a Lambertian base scaled by (1-metallic), plus an
//     anisotropic microfacet specular lobe, plus an optional clearcoat
//
// Sheen and subsurface are sampled but not yet turned into lobes.
func ComputeScattering(mat Sampled, normal, tangent core.Vec3, arena *bxdf.Arena, mode bxdf.TransportMode, allowMultipleLobes bool) *bxdf.BSDF {
	b := arena.NewBSDF(normal, tangent)

	if mat.Transmission > 0 {
		b.Add(arena.NewSpecularTransmission(mat.BaseColor, 1.0, mat.IOR, mode))
		return b
	}

	if mat.Metallic != 1.0 {
		b.Add(arena.NewScaled(1.0-mat.Metallic, arena.NewLambertian(mat.BaseColor)))
	}

	alpha := mat.Roughness * mat.Roughness
	aspect := alphaAspect(mat.Anisotropic)
	distribution := bxdf.NewTrowbridgeReitz(alpha/aspect, alpha*aspect)

	specularLevel := core.NewVec3(mat.Specular, mat.Specular, mat.Specular)
	fresnel := bxdf.FresnelSchlick{R0: specularLevel.Lerp(mat.BaseColor, mat.Metallic)}

	white := core.NewVec3(1, 1, 1)
	b.Add(arena.NewMicrofacetReflection(
		white.Lerp(mat.BaseColor, mat.SpecularTint),
		distribution,
		fresnel,
	))

	if allowMultipleLobes && mat.Clearcoat != 0 {
		ccAlpha := (0.5 - mat.ClearcoatGloss*0.5) * (0.5 - mat.ClearcoatGloss*0.5)
		b.Add(arena.NewMicrofacetReflection(
			white,
			bxdf.NewTrowbridgeReitz(ccAlpha, ccAlpha),
			fresnel,
		))
	}

	return b
}

// alphaAspect derives the anisotropic stretch factor for the specular
// roughness axes
func alphaAspect(anisotropic float64) float64 {
	return math.Sqrt(1.0 - 0.9*anisotropic)
}
