package loaders

import (
	"fmt"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/prism-render/prism/pkg/core"
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// LoadImage loads an image file (PNG, JPEG, TIFF, BMP or GIF) and converts
// it to a Vec3 color array. EXIF orientation is applied during decoding.
func LoadImage(filename string) (*ImageData, error) {
	img, err := imaging.Open(filename, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// At returns the pixel color at integer coordinates, clamped to the image
// bounds
func (im *ImageData) At(x, y int) core.Vec3 {
	x = max(0, min(x, im.Width-1))
	y = max(0, min(y, im.Height-1))
	return im.Pixels[y*im.Width+x]
}

// AtUV returns the nearest pixel for normalized [0,1)² coordinates
func (im *ImageData) AtUV(uv core.Vec2) core.Vec3 {
	x := min(int(uv.X*float64(im.Width)), im.Width-1)
	y := min(int(uv.Y*float64(im.Height)), im.Height-1)
	return im.At(x, y)
}
