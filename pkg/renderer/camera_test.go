package renderer

import (
	"math"
	"testing"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/scene"
)

// midSampler always returns 0.5, which centers the jitter in the pixel
type midSampler struct{}

func (midSampler) Get1D() float64   { return 0.5 }
func (midSampler) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }

func testCameraConfig() scene.Camera {
	return scene.Camera{
		Position:       core.NewVec3(0, 0, 5),
		Direction:      core.NewVec3(0, 0, -1),
		SensorDistance: 1.0,
		FocusDistance:  5.0,
		Width:          100,
		Height:         80,
	}
}

func TestCameraCenterRay(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	ray := camera.GetRay(50, 40, midSampler{})
	if ray.Origin != core.NewVec3(0, 0, 5) {
		t.Errorf("pinhole origin: got %v", ray.Origin)
	}
	// The image center looks straight down the view direction
	if ray.Direction.Dot(core.NewVec3(0, 0, -1)) < 0.999 {
		t.Errorf("center direction: got %v", ray.Direction)
	}
	if math.Abs(ray.Direction.Length()-1) > 1e-12 {
		t.Errorf("direction not unit: %v", ray.Direction)
	}
}

func TestCameraEdgeRaysDiverge(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	left := camera.GetRay(0, 40, midSampler{})
	right := camera.GetRay(99, 40, midSampler{})
	if left.Direction.Subtract(right.Direction).Length() < 0.1 {
		t.Error("rays at opposite image edges should diverge")
	}
	// Both still point forward
	if left.Direction.Z >= 0 || right.Direction.Z >= 0 {
		t.Errorf("edge rays should look toward -Z: %v %v", left.Direction, right.Direction)
	}
}

func TestCameraLevelHorizon(t *testing.T) {
	cfg := testCameraConfig()
	cfg.Direction = core.NewVec3(1, -0.3, 1)
	camera := NewCamera(cfg)

	// The horizontal axis stays perpendicular to world up
	if math.Abs(camera.basisX.Dot(core.NewVec3(0, 1, 0))) > 1e-12 {
		t.Errorf("basisX not horizontal: %v", camera.basisX)
	}
	if math.Abs(camera.basisX.Dot(camera.basisZ)) > 1e-12 ||
		math.Abs(camera.basisY.Dot(camera.basisZ)) > 1e-12 ||
		math.Abs(camera.basisX.Dot(camera.basisY)) > 1e-12 {
		t.Error("camera basis is not orthogonal")
	}
}

type seqSampler struct {
	values []float64
	i      int
}

func (s *seqSampler) Get1D() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func (s *seqSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.Get1D(), s.Get1D())
}

func TestCameraApertureOffsetsOrigin(t *testing.T) {
	cfg := testCameraConfig()
	cfg.Aperture = 0.5
	camera := NewCamera(cfg)

	// Jitter 0.5 centers the pixel; lens sample (0.9, 0.5) lands off-center
	sampler := &seqSampler{values: []float64{0.5, 0.5, 0.9, 0.5}}
	ray := camera.GetRay(50, 40, sampler)
	offset := ray.Origin.Subtract(cfg.Position).Length()
	if offset == 0 {
		t.Fatal("aperture should move the ray origin off the pinhole")
	}
	if offset > cfg.Aperture+1e-9 {
		t.Errorf("lens offset %f exceeds the aperture radius", offset)
	}

	// The lens ray still passes through its pinhole ray's focal point
	pinhole := NewCamera(testCameraConfig()).GetRay(50, 40, midSampler{})
	focal := cfg.Position.Add(pinhole.Direction.Multiply(cfg.FocusDistance))
	toFocal := focal.Subtract(ray.Origin).Normalize()
	if toFocal.Subtract(ray.Direction).Length() > 1e-9 {
		t.Error("lens ray does not pass through the focal point")
	}
}
