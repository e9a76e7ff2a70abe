package bxdf

import (
	"github.com/prism-render/prism/pkg/core"
)

// SpecularReflection is a perfect mirror weighted by a Fresnel term. It is
// a delta lobe: F and PDF return zero and only SampleF produces energy.
type SpecularReflection struct {
	Color   core.Vec3
	Fresnel Fresnel
}

func (s *SpecularReflection) Kind() Kind {
	return Reflection | Specular
}

func (s *SpecularReflection) F(wo, wi core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (s *SpecularReflection) SampleF(wo core.Vec3, sampler core.Sampler) Sample {
	wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
	f := s.Fresnel.Evaluate(CosTheta(wi)).MultiplyVec(s.Color).Multiply(1.0 / AbsCosTheta(wi))
	return Sample{Wi: wi, PDF: 1, F: f, Sampled: s.Kind()}
}

func (s *SpecularReflection) PDF(wo, wi core.Vec3) float64 {
	return 0
}

// SpecularTransmission is a perfect refractive delta lobe between media
// with indices EtaA (outside) and EtaB (inside)
type SpecularTransmission struct {
	Color   core.Vec3
	EtaA    float64
	EtaB    float64
	Fresnel FresnelDielectric
	Mode    TransportMode
}

func (s *SpecularTransmission) Kind() Kind {
	return Transmission | Specular
}

func (s *SpecularTransmission) F(wo, wi core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (s *SpecularTransmission) SampleF(wo core.Vec3, sampler core.Sampler) Sample {
	sample := Sample{PDF: 1, Sampled: s.Kind()}

	entering := CosTheta(wo) > 0
	etaFrac := s.EtaB / s.EtaA
	if entering {
		etaFrac = s.EtaA / s.EtaB
	}

	normal := Faceforward(core.NewVec3(0, 0, 1), wo)
	wi, ok := Refract(wo, normal, etaFrac)
	if !ok {
		return sample // total internal reflection carries no transmission
	}
	sample.Wi = wi

	one := core.NewVec3(1, 1, 1)
	ft := s.Color.MultiplyVec(one.Subtract(s.Fresnel.Evaluate(CosTheta(wi))))
	if s.Mode == Radiance {
		ft = ft.Multiply(etaFrac * etaFrac)
	}
	sample.F = ft.Multiply(1.0 / AbsCosTheta(wi))
	return sample
}

func (s *SpecularTransmission) PDF(wo, wi core.Vec3) float64 {
	return 0
}

// FresnelSpecular combines specular reflection and transmission, choosing
// between them stochastically in proportion to the Fresnel reflectance so
// the chosen branch's weight cancels cleanly
type FresnelSpecular struct {
	Color core.Vec3
	EtaA  float64
	EtaB  float64
	Mode  TransportMode
}

func (s *FresnelSpecular) Kind() Kind {
	return Reflection | Transmission | Specular
}

func (s *FresnelSpecular) F(wo, wi core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (s *FresnelSpecular) SampleF(wo core.Vec3, sampler core.Sampler) Sample {
	fr := FrDielectric(CosTheta(wo), s.EtaA, s.EtaB)

	if sampler.Get1D() < fr {
		wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
		return Sample{
			Wi:      wi,
			PDF:     fr,
			F:       s.Color.Multiply(fr / AbsCosTheta(wi)),
			Sampled: Reflection | Specular,
		}
	}

	sample := Sample{PDF: 1 - fr, Sampled: Transmission | Specular}

	entering := CosTheta(wo) > 0
	etaFrac := s.EtaB / s.EtaA
	if entering {
		etaFrac = s.EtaA / s.EtaB
	}

	normal := Faceforward(core.NewVec3(0, 0, 1), wo)
	wi, ok := Refract(wo, normal, etaFrac)
	if !ok {
		return sample
	}
	sample.Wi = wi

	ft := s.Color.Multiply(1 - fr)
	if s.Mode == Radiance {
		ft = ft.Multiply(etaFrac * etaFrac)
	}
	sample.F = ft.Multiply(1.0 / AbsCosTheta(wi))
	return sample
}

func (s *FresnelSpecular) PDF(wo, wi core.Vec3) float64 {
	return 0
}
