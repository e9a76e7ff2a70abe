package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prism-render/prism/pkg/core"
)

func TestSphereIntersect(t *testing.T) {
	// Sphere at (0, 2, 0), ray from the origin looking in +Y
	sphere := Sphere{Radius: 1}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	surf, outcome := sphere.Intersect(ray, mgl64.QuatIdent(), core.NewVec3(0, 2, 0))
	if outcome != Hit {
		t.Fatalf("outcome: got %v, expected Hit", outcome)
	}
	if surf.Point.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("point: got %v, expected (0,1,0)", surf.Point)
	}
	if surf.Normal.Subtract(core.NewVec3(0, -1, 0)).Length() > 1e-12 {
		t.Errorf("normal: got %v, expected (0,-1,0)", surf.Normal)
	}
	if math.Abs(surf.T-1.0) > 1e-12 {
		t.Errorf("distance: got %f, expected 1", surf.T)
	}
	if math.Abs(surf.Normal.Dot(surf.Tangent)) > 1e-9 {
		t.Errorf("tangent not perpendicular to normal: dot %f", surf.Normal.Dot(surf.Tangent))
	}
}

func TestSphereIntersectLargeRadius(t *testing.T) {
	sphere := Sphere{Radius: 2}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	surf, outcome := sphere.Intersect(ray, mgl64.QuatIdent(), core.NewVec3(0, 4, 0))
	if outcome != Hit {
		t.Fatalf("outcome: got %v, expected Hit", outcome)
	}
	if surf.Point.Subtract(core.NewVec3(0, 2, 0)).Length() > 1e-12 {
		t.Errorf("point: got %v, expected (0,2,0)", surf.Point)
	}
	if math.Abs(surf.T-2.0) > 1e-12 {
		t.Errorf("distance: got %f, expected 2", surf.T)
	}
}

func TestSphereIntersectMiss(t *testing.T) {
	// Ground-sized sphere below a ray pointed above the horizon
	sphere := Sphere{Radius: 100}
	ray := core.NewRay(
		core.NewVec3(3, 1.5, 3),
		core.NewVec3(-0.11515933, 0.35110158, -0.9292287),
	)

	if _, outcome := sphere.Intersect(ray, mgl64.QuatIdent(), core.NewVec3(0, -100, 0)); outcome != Miss {
		t.Errorf("outcome: got %v, expected Miss", outcome)
	}
}

func TestSphereIntersectSelfHitIgnored(t *testing.T) {
	// Ray starting on the surface pointing inward hits within the guard
	// distance
	sphere := Sphere{Radius: 1}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	if _, outcome := sphere.Intersect(ray, mgl64.QuatIdent(), core.NewVec3(0, 0, 0)); outcome != Ignored {
		t.Errorf("outcome: got %v, expected Ignored", outcome)
	}
}

func TestSphereUVMapping(t *testing.T) {
	sphere := Sphere{Radius: 1}

	// Hit the north pole: θ=0 so u=0
	ray := core.NewRay(core.NewVec3(0, 3, 0), core.NewVec3(0, -1, 0))
	surf, outcome := sphere.Intersect(ray, mgl64.QuatIdent(), core.NewVec3(0, 0, 0))
	if outcome != Hit {
		t.Fatal("expected hit at north pole")
	}
	if math.Abs(surf.UV.X) > 1e-9 {
		t.Errorf("north pole u: got %f, expected 0", surf.UV.X)
	}

	// Hit the equator at +Z: θ=π/2 so u=0.5, φ=0 so v=0.5
	ray = core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1))
	surf, outcome = sphere.Intersect(ray, mgl64.QuatIdent(), core.NewVec3(0, 0, 0))
	if outcome != Hit {
		t.Fatal("expected hit at equator")
	}
	if math.Abs(surf.UV.X-0.5) > 1e-9 {
		t.Errorf("equator u: got %f, expected 0.5", surf.UV.X)
	}
	if math.Abs(surf.UV.Y-0.5) > 1e-9 {
		t.Errorf("equator v: got %f, expected 0.5", surf.UV.Y)
	}
}

func TestSphereUVRotation(t *testing.T) {
	sphere := Sphere{Radius: 1}
	ray := core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1))

	// A quarter turn about Y moves the equator hit a quarter of the way
	// around the texture
	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	surf, outcome := sphere.Intersect(ray, rot, core.NewVec3(0, 0, 0))
	if outcome != Hit {
		t.Fatal("expected hit")
	}
	if math.Abs(surf.UV.Y-0.75) > 1e-9 {
		t.Errorf("rotated v: got %f, expected 0.75", surf.UV.Y)
	}
}
