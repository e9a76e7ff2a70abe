package renderer

import (
	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/scene"
)

// Camera generates primary rays from the scene's view parameters. Pixel
// coordinates are jittered for anti-aliasing and the ray origin is spread
// over the aperture disk for depth of field.
type Camera struct {
	position       core.Vec3
	basisX         core.Vec3
	basisY         core.Vec3
	basisZ         core.Vec3
	sensorDistance float64
	aperture       float64
	focusDistance  float64
	width          int
	height         int
}

// NewCamera builds the camera space basis from the view direction. The
// horizontal axis is perpendicular to world up, so the horizon stays level.
func NewCamera(cfg scene.Camera) *Camera {
	basisZ := cfg.Direction.Normalize()
	basisX := basisZ.Cross(core.NewVec3(0, 1, 0)).Normalize().Negate()
	basisY := basisX.Cross(basisZ).Normalize()

	return &Camera{
		position:       cfg.Position,
		basisX:         basisX,
		basisY:         basisY,
		basisZ:         basisZ,
		sensorDistance: cfg.SensorDistance,
		aperture:       cfg.Aperture,
		focusDistance:  cfg.FocusDistance,
		width:          cfg.Width,
		height:         cfg.Height,
	}
}

// toWorld maps camera space coordinates into the world frame
func (c *Camera) toWorld(x, y, z float64) core.Vec3 {
	return c.basisX.Multiply(x).
		Add(c.basisY.Multiply(y)).
		Add(c.basisZ.Multiply(z))
}

// GetRay generates a ray through pixel (i, j), jittered within the pixel.
// With a nonzero aperture the origin moves on the lens disk and the
// direction pivots around the focal point, which blurs everything off the
// focus plane.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	aspectRatio := float64(c.width) / float64(c.height)

	x := (float64(i)+sampler.Get1D())/float64(c.width)*2 - 1
	y := ((float64(j)+sampler.Get1D())/float64(c.height)*2 - 1) / aspectRatio

	direction := c.toWorld(x, y, c.sensorDistance).Normalize()
	if c.aperture == 0 {
		return core.NewRay(c.position, direction)
	}

	disk := core.SampleConcentricDisk(sampler.Get2D())
	origin := c.position.Add(c.toWorld(disk.X*c.aperture, disk.Y*c.aperture, 0))
	focal := c.position.Add(direction.Multiply(c.focusDistance))

	return core.NewRay(origin, focal.Subtract(origin).Normalize())
}
