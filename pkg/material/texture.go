package material

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/loaders"
)

// ColorTexture is a material parameter that is either a constant color or
// an image sampled by surface UV. In a scene file it is written as a
// number (gray), a [r,g,b] array, or a string path to an image.
type ColorTexture struct {
	Value core.Vec3
	Path  string
	image *loaders.ImageData
}

func (t *ColorTexture) UnmarshalJSON(data []byte) error {
	var gray float64
	if err := json.Unmarshal(data, &gray); err == nil {
		t.Value = core.NewVec3(gray, gray, gray)
		return nil
	}

	var rgb [3]float64
	if err := json.Unmarshal(data, &rgb); err == nil {
		t.Value = core.NewVec3(rgb[0], rgb[1], rgb[2])
		return nil
	}

	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		t.Path = path
		return nil
	}

	return fmt.Errorf("color texture must be a number, [r,g,b] array or image path")
}

// Load resolves the image path relative to the scene directory and loads
// it. Constant textures are a no-op.
func (t *ColorTexture) Load(dir string) error {
	if t.Path == "" {
		return nil
	}
	img, err := loaders.LoadImage(filepath.Join(dir, t.Path))
	if err != nil {
		return fmt.Errorf("color texture %q: %w", t.Path, err)
	}
	t.image = img
	return nil
}

// At samples the texture at a UV coordinate
func (t *ColorTexture) At(uv core.Vec2) core.Vec3 {
	if t.image != nil {
		return t.image.AtUV(uv)
	}
	return t.Value
}

// ScalarTexture is a scalar material parameter, constant or image-backed.
// Image lookups collapse to luminance.
type ScalarTexture struct {
	Value float64
	Path  string
	image *loaders.ImageData
}

func (t *ScalarTexture) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		t.Value = v
		return nil
	}

	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		t.Path = path
		return nil
	}

	return fmt.Errorf("scalar texture must be a number or image path")
}

// Load resolves and loads the backing image, if any
func (t *ScalarTexture) Load(dir string) error {
	if t.Path == "" {
		return nil
	}
	img, err := loaders.LoadImage(filepath.Join(dir, t.Path))
	if err != nil {
		return fmt.Errorf("scalar texture %q: %w", t.Path, err)
	}
	t.image = img
	return nil
}

// At samples the texture at a UV coordinate
func (t *ScalarTexture) At(uv core.Vec2) float64 {
	if t.image != nil {
		return t.image.AtUV(uv).Luminance()
	}
	return t.Value
}
