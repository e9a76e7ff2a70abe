package integrator

import (
	"math"

	"github.com/prism-render/prism/pkg/bxdf"
	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/geometry"
	"github.com/prism-render/prism/pkg/lights"
	"github.com/prism-render/prism/pkg/material"
	"github.com/prism-render/prism/pkg/scene"
)

// rouletteMinSurvival bounds the survival probability once Russian
// roulette starts, so dim paths still get a chance to contribute
const rouletteMinSurvival = 0.7

// rouletteStartBounce is the last bounce exempt from Russian roulette
const rouletteStartBounce = 3

// PathIntegrator estimates radiance along camera rays by unidirectional
// path tracing with next-event estimation at every diffuse or glossy
// interaction
type PathIntegrator struct {
	BounceLimit int
}

func NewPathIntegrator(bounceLimit int) *PathIntegrator {
	return &PathIntegrator{BounceLimit: bounceLimit}
}

// RayColor traces one path and returns its radiance estimate.
//
// At each surface hit the material's BSDF is assembled into the arena, a
// direct-lighting estimate is added when any non-specular lobe exists, and
// the path continues in a BSDF-sampled direction. Infinite lights that act
// as a visible backdrop are added when a camera ray or a specular bounce
// escapes; after a non-specular bounce the direct-lighting estimate has
// already accounted for them.
func (pi *PathIntegrator) RayColor(ray core.Ray, sc *scene.Scene, arena *bxdf.Arena, sampler core.Sampler, recorder Recorder) core.Vec3 {
	var radiance core.Vec3
	beta := core.NewVec3(1, 1, 1)
	specularBounce := false

	arena.Reset()

	for bounce := 0; bounce < pi.BounceLimit; bounce++ {
		hit, areaLight, outcome := sc.Intersect(ray)

		if outcome == geometry.Ignored {
			recorder.Terminate(bounce, TermIgnored, radiance)
			return radiance
		}
		if outcome == geometry.Miss {
			if bounce == 0 || specularBounce {
				radiance = radiance.Add(beta.MultiplyVec(backdrop(sc, ray)))
			}
			recorder.Terminate(bounce, TermMiss, radiance)
			return radiance
		}
		if areaLight != nil {
			radiance = radiance.Add(beta.MultiplyVec(areaLight.Le(ray)))
			recorder.Terminate(bounce, TermLight, radiance)
			return radiance
		}

		bsdf := material.ComputeScattering(hit.Material, hit.Normal, hit.Tangent, arena, bxdf.Radiance, true)

		if bsdf.NumComponents(bxdf.All&^bxdf.Specular) > 0 {
			ld := lights.SampleOneLight(ray, hit.Point, hit.Normal, sc.Lights, bsdf, sc, sampler)
			radiance = radiance.Add(beta.MultiplyVec(ld))
		}

		sample := bsdf.SampleF(ray.Direction.Negate(), bxdf.All, sampler)
		specularBounce = sample.Sampled.Has(bxdf.Specular)
		if sample.F.IsBlack() || sample.PDF == 0 {
			recorder.Terminate(bounce, TermZeroPDF, radiance)
			return radiance
		}

		beta = beta.MultiplyVec(sample.F.Multiply(math.Abs(sample.Wi.Dot(hit.Normal)) / sample.PDF))
		recorder.Bounce(bounce, ray, sample, beta)

		if bounce > rouletteStartBounce {
			survival := math.Max(beta.MaxComponent(), rouletteMinSurvival)
			if sampler.Get1D() > survival {
				recorder.Terminate(bounce, TermRoulette, radiance)
				return radiance
			}
		}

		ray = core.NewRay(hit.Point, sample.Wi)
	}

	recorder.Terminate(pi.BounceLimit, TermBounceLimit, radiance)
	return radiance
}

// backdrop sums the radiance of infinite lights that appear as a visible
// background, for rays that leave the scene
func backdrop(sc *scene.Scene, ray core.Ray) core.Vec3 {
	var le core.Vec3
	for _, l := range sc.Lights {
		kind := l.Kind()
		if kind.Has(lights.Infinite) && !kind.Has(lights.NoBackground) {
			le = le.Add(l.Le(ray))
		}
	}
	return le
}
