package lights

import (
	"math"

	"github.com/prism-render/prism/pkg/bxdf"
	"github.com/prism-render/prism/pkg/core"
)

// Occluder answers shadow-ray queries. The scene implements it; tests can
// substitute an empty world.
type Occluder interface {
	// Unoccluded reports whether a ray escapes the scene without hitting
	// any surface
	Unoccluded(ray core.Ray) bool
}

// SampleOneLight estimates direct illumination at a surface point by
// picking one non-area light uniformly at random and dividing by its
// selection probability. Area lights are excluded: they are reached by
// BSDF rays during path tracing instead.
func SampleOneLight(ray core.Ray, p, n core.Vec3, allLights []Light, bsdf *bxdf.BSDF, world Occluder, sampler core.Sampler) core.Vec3 {
	numLights := 0
	for _, l := range allLights {
		if !l.Kind().Has(Area) {
			numLights++
		}
	}
	if numLights == 0 {
		return core.Vec3{}
	}

	choice := min(int(sampler.Get1D()*float64(numLights)), numLights-1)
	var light Light
	for _, l := range allLights {
		if l.Kind().Has(Area) {
			continue
		}
		if choice == 0 {
			light = l
			break
		}
		choice--
	}

	// The selection probability uses the full light count, area lights
	// included, matching how scenes were balanced historically
	pdfScale := 1.0 / float64(len(allLights))
	return EstimateDirect(ray, p, n, light, bsdf, world, false, sampler).Multiply(1.0 / pdfScale)
}

// EstimateDirect computes one light's contribution at a surface point by
// multiple importance sampling: one sample from the light's distribution
// and one from the BSDF's, combined with the power heuristic. Delta lights
// skip the BSDF strategy since a sampled direction can never hit them.
func EstimateDirect(ray core.Ray, p, n core.Vec3, light Light, bsdf *bxdf.BSDF, world Occluder, specular bool, sampler core.Sampler) core.Vec3 {
	var ld core.Vec3

	kind := bxdf.All
	if !specular {
		kind = bxdf.All &^ bxdf.Specular
	}

	wo := ray.Direction.Negate()

	// Strategy 1: sample the light
	wi, lightPdf, li := light.SampleLi(p, sampler)
	if lightPdf > 0 && !li.IsBlack() {
		shadowRay := core.NewRay(p, wi)
		if world.Unoccluded(shadowRay) {
			f := bsdf.F(wo, wi, kind).Multiply(math.Abs(wi.Dot(n)))
			if !f.IsBlack() {
				if light.Kind().IsDelta() {
					ld = ld.Add(f.MultiplyVec(li).Multiply(1.0 / lightPdf))
				} else {
					scatteringPdf := bsdf.PDF(wo, wi, kind)
					weight := core.PowerHeuristic(1, lightPdf, 1, scatteringPdf)
					ld = ld.Add(f.MultiplyVec(li).Multiply(weight / lightPdf))
				}
			}
		}
	}

	// Strategy 2: sample the BSDF, for lights a sampled ray can reach
	if !light.Kind().IsDelta() {
		sample := bsdf.SampleF(wo, kind, sampler)
		f := sample.F.Multiply(math.Abs(sample.Wi.Dot(n)))
		sampledSpecular := sample.Sampled.Has(bxdf.Specular)

		if !f.IsBlack() && sample.PDF > 0 {
			weight := 1.0
			if !sampledSpecular {
				lightPdf := light.PdfLi(sample.Wi)
				if lightPdf == 0 {
					return ld
				}
				weight = core.PowerHeuristic(1, sample.PDF, 1, lightPdf)
			}

			bsdfRay := core.NewRay(p, sample.Wi)
			if world.Unoccluded(bsdfRay) {
				li := light.Le(bsdfRay)
				if !li.IsBlack() {
					ld = ld.Add(f.MultiplyVec(li).Multiply(weight / sample.PDF))
				}
			}
		}
	}

	return ld
}
