package bxdf

import (
	"github.com/prism-render/prism/pkg/core"
)

// maxLobes bounds how many scattering functions a material can stack on a
// single surface point
const maxLobes = 8

// BSDF aggregates the scattering lobes a material produced for one surface
// point and owns the transform between world space and the local shading
// frame. The frame rows are (cotangent, tangent, normal), so +Z is the
// surface normal.
//
// The shading normal currently equals the geometric normal; bump or normal
// mapping would split the two.
type BSDF struct {
	lobes     [maxLobes]BxDF
	numLobes  int
	normal    core.Vec3
	geomNorm  core.Vec3
	tangent   core.Vec3
	cotangent core.Vec3
}

// NewBSDF prepares an empty aggregate for a surface point with the given
// shading frame
func NewBSDF(normal, tangent core.Vec3) BSDF {
	return BSDF{
		normal:    normal,
		geomNorm:  normal,
		tangent:   tangent,
		cotangent: normal.Cross(tangent).Normalize(),
	}
}

// Add appends a lobe to the aggregate
func (b *BSDF) Add(lobe BxDF) {
	b.lobes[b.numLobes] = lobe
	b.numLobes++
}

// WorldToLocal transforms a world-space direction into the shading frame
func (b *BSDF) WorldToLocal(v core.Vec3) core.Vec3 {
	return core.NewVec3(v.Dot(b.cotangent), v.Dot(b.tangent), v.Dot(b.normal))
}

// LocalToWorld transforms a shading-frame direction back to world space
func (b *BSDF) LocalToWorld(v core.Vec3) core.Vec3 {
	return core.NewVec3(
		b.cotangent.X*v.X+b.tangent.X*v.Y+b.normal.X*v.Z,
		b.cotangent.Y*v.X+b.tangent.Y*v.Y+b.normal.Y*v.Z,
		b.cotangent.Z*v.X+b.tangent.Z*v.Y+b.normal.Z*v.Z,
	)
}

// NumComponents counts the lobes matching a kind mask
func (b *BSDF) NumComponents(kind Kind) int {
	n := 0
	for i := 0; i < b.numLobes; i++ {
		if b.lobes[i].Kind().Matches(kind) {
			n++
		}
	}
	return n
}

// F evaluates the matching lobes for a world-space direction pair. The
// geometric normal decides whether the pair is a reflection or a
// transmission, and only lobes of that class contribute.
func (b *BSDF) F(woWorld, wiWorld core.Vec3, kind Kind) core.Vec3 {
	reflect := wiWorld.Dot(b.geomNorm)*woWorld.Dot(b.geomNorm) > 0
	wo := b.WorldToLocal(woWorld)
	wi := b.WorldToLocal(wiWorld)
	return b.fLocal(wo, wi, reflect, kind)
}

func (b *BSDF) fLocal(wo, wi core.Vec3, reflect bool, kind Kind) core.Vec3 {
	var f core.Vec3
	for i := 0; i < b.numLobes; i++ {
		lobe := b.lobes[i]
		if !lobe.Kind().Matches(kind) {
			continue
		}
		if (reflect && lobe.Kind().Has(Reflection)) || (!reflect && lobe.Kind().Has(Transmission)) {
			f = f.Add(lobe.F(wo, wi))
		}
	}
	return f
}

// SampleF picks one matching lobe uniformly and samples it. For non-delta
// lobes the pdf is averaged over every matching lobe and, when several
// matched, f is re-evaluated as the full sum so the estimate stays
// consistent with F and PDF.
func (b *BSDF) SampleF(woWorld core.Vec3, kind Kind, sampler core.Sampler) Sample {
	numMatching := b.NumComponents(kind)
	if numMatching == 0 {
		return Sample{}
	}

	choice := min(int(sampler.Get1D()*float64(numMatching)), numMatching-1)
	var lobe BxDF
	lobeIndex := -1
	for i := 0; i < b.numLobes; i++ {
		if b.lobes[i].Kind().Matches(kind) {
			if choice == 0 {
				lobe = b.lobes[i]
				lobeIndex = i
				break
			}
			choice--
		}
	}

	wo := b.WorldToLocal(woWorld)
	if wo.Z == 0 {
		return Sample{}
	}

	sample := lobe.SampleF(wo, sampler)
	wiWorld := b.LocalToWorld(sample.Wi)

	if !lobe.Kind().Has(Specular) {
		for i := 0; i < b.numLobes; i++ {
			if i != lobeIndex && b.lobes[i].Kind().Matches(kind) {
				sample.PDF += b.lobes[i].PDF(wo, sample.Wi)
			}
		}
		sample.PDF /= float64(numMatching)

		if numMatching > 1 {
			reflect := wiWorld.Dot(b.geomNorm)*woWorld.Dot(b.geomNorm) > 0
			sample.F = b.fLocal(wo, sample.Wi, reflect, kind)
		}
	}

	sample.Wi = wiWorld
	return sample
}

// PDF returns the arithmetic mean of the matching lobes' pdfs for a
// world-space direction pair, or 0 when nothing matches
func (b *BSDF) PDF(woWorld, wiWorld core.Vec3, kind Kind) float64 {
	wo := b.WorldToLocal(woWorld)
	wi := b.WorldToLocal(wiWorld)

	count := 0
	pdf := 0.0
	for i := 0; i < b.numLobes; i++ {
		if b.lobes[i].Kind().Matches(kind) {
			count++
			pdf += b.lobes[i].PDF(wo, wi)
		}
	}
	if count == 0 {
		return 0
	}
	return pdf / float64(count)
}

// Rho sums the hemispherical reflectance of the matching lobes that can
// report one
func (b *BSDF) Rho(kind Kind) core.Vec3 {
	var rho core.Vec3
	for i := 0; i < b.numLobes; i++ {
		if !b.lobes[i].Kind().Matches(kind) {
			continue
		}
		if r, ok := b.lobes[i].(Reflector); ok {
			rho = rho.Add(r.Rho())
		}
	}
	return rho
}
