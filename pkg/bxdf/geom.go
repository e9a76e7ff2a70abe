package bxdf

import (
	"math"

	"github.com/prism-render/prism/pkg/core"
)

// Trigonometry of directions in the local shading frame, where the surface
// normal is +Z. Angles never need to be computed explicitly: θ is measured
// from +Z and φ around it, so everything falls out of vector components.

// CosTheta returns cos θ of a local-frame direction
func CosTheta(w core.Vec3) float64 {
	return w.Z
}

// Cos2Theta returns cos² θ of a local-frame direction
func Cos2Theta(w core.Vec3) float64 {
	return w.Z * w.Z
}

// AbsCosTheta returns |cos θ| of a local-frame direction
func AbsCosTheta(w core.Vec3) float64 {
	return math.Abs(w.Z)
}

// Sin2Theta returns sin² θ, clamped to 0 for numerical safety
func Sin2Theta(w core.Vec3) float64 {
	return max(0, 1.0-Cos2Theta(w))
}

// SinTheta returns sin θ
func SinTheta(w core.Vec3) float64 {
	return math.Sqrt(Sin2Theta(w))
}

// TanTheta returns tan θ; ±Inf at grazing directions
func TanTheta(w core.Vec3) float64 {
	return SinTheta(w) / CosTheta(w)
}

// Tan2Theta returns tan² θ; +Inf at grazing directions
func Tan2Theta(w core.Vec3) float64 {
	return Sin2Theta(w) / Cos2Theta(w)
}

// CosPhi returns cos φ, or 1 for directions along ±Z where φ is undefined
func CosPhi(w core.Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 1
	}
	return max(-1, min(1, w.X/sinTheta))
}

// SinPhi returns sin φ, or 0 for directions along ±Z where φ is undefined
func SinPhi(w core.Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 0
	}
	return max(-1, min(1, w.Y/sinTheta))
}

// Cos2Phi returns cos² φ
func Cos2Phi(w core.Vec3) float64 {
	c := CosPhi(w)
	return c * c
}

// Sin2Phi returns sin² φ
func Sin2Phi(w core.Vec3) float64 {
	s := SinPhi(w)
	return s * s
}

// SameHemisphere reports whether two local-frame directions lie on the same
// side of the surface
func SameHemisphere(w, v core.Vec3) bool {
	return w.Z*v.Z > 0
}

// Reflect mirrors wo about the normal n (both pointing away from the surface)
func Reflect(wo, n core.Vec3) core.Vec3 {
	return wo.Negate().Add(n.Multiply(2 * wo.Dot(n)))
}

// Refract bends wi about the normal for the relative index of refraction eta.
// Returns false on total internal reflection.
func Refract(wi, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosThetaI := n.Dot(wi)
	sin2ThetaI := max(0, 1.0-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return core.Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	wt := wi.Negate().Multiply(eta).Add(n.Multiply(eta*cosThetaI - cosThetaT))
	return wt, true
}

// Faceforward flips n so it lies in the same hemisphere as v
func Faceforward(n, v core.Vec3) core.Vec3 {
	if n.Dot(v) < 0 {
		return n.Negate()
	}
	return n
}
