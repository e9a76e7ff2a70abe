package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/geometry"
	"github.com/prism-render/prism/pkg/lights"
	"github.com/prism-render/prism/pkg/material"
)

// Camera holds the view parameters and render settings carried in the
// scene file
type Camera struct {
	Position       core.Vec3
	Direction      core.Vec3 // unit view direction
	SensorDistance float64
	Aperture       float64
	FocusDistance  float64
	LDRScale       float64

	BounceLimit int
	NumSamples  int
	Width       int
	Height      int
}

// Object is a shape placed in the world with a material
type Object struct {
	Shape    geometry.Sphere
	Position core.Vec3
	Rotation mgl64.Quat
	Material material.Disney
}

// Scene is everything a render needs: the camera, the objects and the
// lights. It implements lights.Occluder for shadow rays.
type Scene struct {
	Camera  Camera
	Objects []*Object
	Lights  []lights.Light
}

// Intersection is a ray hit against a scene object, with the material
// already sampled at the hit point's UV
type Intersection struct {
	geometry.Surface
	Material material.Sampled
	Object   *Object
}

// Intersect finds the nearest hit along a ray among all objects and area
// lights. An area-light hit returns the light instead of a material. An
// Ignored result from any surface aborts the whole query: the ray started
// too close to something, and the sample is not trustworthy.
func (s *Scene) Intersect(ray core.Ray) (Intersection, *lights.AreaLight, geometry.Outcome) {
	var nearest geometry.Surface
	var nearestObj *Object
	var nearestLight *lights.AreaLight
	outcome := geometry.Miss

	for _, obj := range s.Objects {
		surface, result := obj.Shape.Intersect(ray, obj.Rotation, obj.Position)
		switch result {
		case geometry.Ignored:
			return Intersection{}, nil, geometry.Ignored
		case geometry.Hit:
			if outcome == geometry.Miss || surface.T < nearest.T {
				nearest, nearestObj, outcome = surface, obj, geometry.Hit
			}
		}
	}

	for _, l := range s.Lights {
		area, ok := l.(*lights.AreaLight)
		if !ok {
			continue
		}
		surface, result := area.Shape.Intersect(ray, area.Rotation, area.Position)
		switch result {
		case geometry.Ignored:
			return Intersection{}, nil, geometry.Ignored
		case geometry.Hit:
			if outcome == geometry.Miss || surface.T < nearest.T {
				nearest, nearestObj, nearestLight = surface, nil, area
				outcome = geometry.Hit
			}
		}
	}

	if outcome == geometry.Miss {
		return Intersection{}, nil, geometry.Miss
	}
	if nearestLight != nil {
		return Intersection{Surface: nearest}, nearestLight, geometry.Hit
	}
	return Intersection{
		Surface:  nearest,
		Material: nearestObj.Material.Sample(nearest.UV),
		Object:   nearestObj,
	}, nil, geometry.Hit
}

// Unoccluded reports whether a ray escapes the scene without hitting
// anything, area lights included
func (s *Scene) Unoccluded(ray core.Ray) bool {
	_, _, outcome := s.Intersect(ray)
	return outcome == geometry.Miss
}
