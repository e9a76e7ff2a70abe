package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/geometry"
	"github.com/prism-render/prism/pkg/lights"
	"github.com/prism-render/prism/pkg/loaders"
	"github.com/prism-render/prism/pkg/material"
)

type cameraFile struct {
	Position       [3]float64 `json:"position"`
	Direction      [3]float64 `json:"direction"`
	SensorDistance float64    `json:"sensor_distance"`
	Aperture       float64    `json:"aperture"`
	FocusDistance  float64    `json:"focus_distance"`
	LDRScale       float64    `json:"ldr_scale"`
	BounceLimit    int        `json:"bounce_limit"`
	NumSamples     int        `json:"num_samples"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
}

type shapeFile struct {
	Kind   string  `json:"kind"`
	Radius float64 `json:"radius"`
}

type objectFile struct {
	Shape    shapeFile       `json:"shape"`
	Position [3]float64      `json:"position"`
	Rotation *[3]float64     `json:"rotation"`
	Material material.Disney `json:"material"`
}

// lightFile is the union of every light kind's fields; Kind selects which
// ones apply
type lightFile struct {
	Kind      string      `json:"kind"`
	Position  [3]float64  `json:"position"`
	Direction [3]float64  `json:"direction"`
	Angle     float64     `json:"angle"`
	Falloff   float64     `json:"falloff"`
	Color     [3]float64  `json:"color"`
	Path      string      `json:"path"`
	Strength  float64     `json:"strength"`
	Rotation  *[3]float64 `json:"rotation"`
	Shape     shapeFile   `json:"shape"`
}

type sceneFile struct {
	Camera  cameraFile   `json:"camera"`
	Objects []objectFile `json:"objects"`
	Lights  []lightFile  `json:"lights"`
}

// Load reads a JSON scene description from disk. Texture and HDRI paths in
// the file resolve relative to the scene file's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse builds a scene from a JSON description, resolving referenced
// images relative to dir
func Parse(data []byte, dir string) (*Scene, error) {
	var file sceneFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	s := &Scene{
		Camera: Camera{
			Position:       toVec3(file.Camera.Position),
			Direction:      toVec3(file.Camera.Direction).Normalize(),
			SensorDistance: file.Camera.SensorDistance,
			Aperture:       file.Camera.Aperture,
			FocusDistance:  file.Camera.FocusDistance,
			LDRScale:       file.Camera.LDRScale,
			BounceLimit:    file.Camera.BounceLimit,
			NumSamples:     file.Camera.NumSamples,
			Width:          file.Camera.Width,
			Height:         file.Camera.Height,
		},
	}

	for i, o := range file.Objects {
		shape, err := buildShape(o.Shape)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		obj := &Object{
			Shape:    shape,
			Position: toVec3(o.Position),
			Rotation: rotationQuat(o.Rotation),
			Material: o.Material,
		}
		if err := obj.Material.LoadTextures(dir); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		s.Objects = append(s.Objects, obj)
	}

	for i, l := range file.Lights {
		light, err := buildLight(l, dir)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		s.Lights = append(s.Lights, light)
	}

	return s, nil
}

func buildShape(s shapeFile) (geometry.Sphere, error) {
	if s.Kind != "sphere" {
		return geometry.Sphere{}, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
	return geometry.Sphere{Radius: s.Radius}, nil
}

func buildLight(l lightFile, dir string) (lights.Light, error) {
	switch l.Kind {
	case "point":
		return &lights.PointLight{
			Position: toVec3(l.Position),
			Radiance: toVec3(l.Color),
		}, nil
	case "spot":
		return &lights.SpotLight{
			Position:   toVec3(l.Position),
			Direction:  toVec3(l.Direction).Normalize(),
			CosAngle:   math.Cos(l.Angle * math.Pi / 180),
			CosFalloff: math.Cos(l.Falloff * math.Pi / 180),
			Radiance:   toVec3(l.Color),
		}, nil
	case "direction":
		return &lights.DirectionalLight{
			Direction: toVec3(l.Direction).Normalize(),
			Radiance:  toVec3(l.Color),
		}, nil
	case "hdri":
		img, err := loaders.LoadImage(filepath.Join(dir, l.Path))
		if err != nil {
			return nil, fmt.Errorf("hdri %q: %w", l.Path, err)
		}
		return lights.NewEnvironment(img, l.Strength), nil
	case "area":
		shape, err := buildShape(l.Shape)
		if err != nil {
			return nil, err
		}
		return &lights.AreaLight{
			Position: toVec3(l.Position),
			Rotation: rotationQuat(l.Rotation),
			Shape:    shape,
			Radiance: toVec3(l.Color),
		}, nil
	case "ambient":
		return &lights.AmbientLight{Radiance: toVec3(l.Color)}, nil
	}
	return nil, fmt.Errorf("unknown light kind %q", l.Kind)
}

func toVec3(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// rotationQuat converts Euler angles in degrees to a quaternion; a missing
// rotation is the identity
func rotationQuat(angles *[3]float64) mgl64.Quat {
	if angles == nil {
		return mgl64.QuatIdent()
	}
	return mgl64.AnglesToQuat(
		angles[0]*math.Pi/180,
		angles[1]*math.Pi/180,
		angles[2]*math.Pi/180,
		mgl64.XYZ,
	)
}
