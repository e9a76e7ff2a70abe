package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prism-render/prism/pkg/core"
)

// tMin is the self-intersection guard: hits closer than this are reported
// as Ignored so a bounced ray never re-hits the surface it left
const tMin = 0.001

// Outcome classifies an intersection attempt
type Outcome int

const (
	Miss Outcome = iota
	Hit
	Ignored
)

// Surface describes the local geometry at a hit point
type Surface struct {
	T       float64
	Point   core.Vec3
	Normal  core.Vec3
	Tangent core.Vec3
	UV      core.Vec2
}

// Sphere is the one supported shape: a sphere of the given radius centered
// at the owning object's position
type Sphere struct {
	Radius float64 `json:"radius"`
}

// Intersect tests a ray against the sphere placed at center. The rotation
// only affects the texture parameterization, not the silhouette. Only the
// near root is considered; a near hit inside the guard distance is Ignored.
func (s Sphere) Intersect(ray core.Ray, rotation mgl64.Quat, center core.Vec3) (Surface, Outcome) {
	oc := ray.Origin.Subtract(center)

	a := ray.Direction.LengthSquared()
	h := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius
	discriminant := h*h - a*c
	if discriminant < 0 {
		return Surface{}, Miss
	}

	t := (-h - math.Sqrt(discriminant)) / a
	if t < 0 {
		return Surface{}, Miss
	}
	if t < tMin {
		return Surface{}, Ignored
	}

	point := ray.At(t)
	normal := point.Subtract(center).Normalize()

	// Lat-long tangent, with a fixed fallback at the poles where the
	// longitude direction degenerates
	var tangent core.Vec3
	if math.Abs(normal.Z) <= 1e-6 && math.Abs(normal.X) <= 1e-6 {
		tangent = core.NewVec3(1, 0, 0)
	} else {
		tangent = core.NewVec3(normal.Z, 0, -normal.X).Normalize()
	}

	// Texture coordinates come from the normal rotated into the object's
	// frame, so spinning an object spins its texture
	rn := rotation.Rotate(mgl64.Vec3{normal.X, normal.Y, normal.Z})
	theta := math.Acos(max(-1, min(1, rn.Y())))
	phi := math.Atan2(rn.X(), rn.Z())
	uv := core.NewVec2(theta/math.Pi, (phi+math.Pi)/(2*math.Pi))

	return Surface{
		T:       t,
		Point:   point,
		Normal:  normal,
		Tangent: tangent,
		UV:      uv,
	}, Hit
}
