package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/geometry"
	"github.com/prism-render/prism/pkg/material"
	"github.com/prism-render/prism/pkg/renderer"
)

// InspectResponse describes what the camera ray through a pixel hits
type InspectResponse struct {
	Hit      bool       `json:"hit"`
	Kind     string     `json:"kind"` // "object", "light", "miss" or "ignored"
	Point    [3]float64 `json:"point"`
	Normal   [3]float64 `json:"normal"`
	UV       [2]float64 `json:"uv"`
	Distance float64    `json:"distance"`

	Material map[string]interface{} `json:"material,omitempty"`
	Radiance [3]float64             `json:"radiance,omitempty"`
}

// centerSampler pins jitter to the pixel center so inspection rays are
// deterministic
type centerSampler struct{}

func (centerSampler) Get1D() float64   { return 0.5 }
func (centerSampler) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }

// handleInspect reports scene details for a clicked pixel
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	query := r.URL.Query()
	sc, err := s.loadScene(query.Get("scene"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	width, err := parseIntParam(query, "width", sc.Camera.Width, 16, 2000)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	height, err := parseIntParam(query, "height", sc.Camera.Height, 16, 2000)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	x, err := strconv.Atoi(query.Get("x"))
	if err != nil {
		badRequest(w, "invalid x coordinate")
		return
	}
	y, err := strconv.Atoi(query.Get("y"))
	if err != nil {
		badRequest(w, "invalid y coordinate")
		return
	}
	if x < 0 || x >= width || y < 0 || y >= height {
		badRequest(w, fmt.Sprintf("pixel (%d, %d) out of bounds", x, y))
		return
	}

	sc.Camera.Width, sc.Camera.Height = width, height
	camera := renderer.NewCamera(sc.Camera)
	ray := camera.GetRay(x, y, centerSampler{})
	hit, areaLight, outcome := sc.Intersect(ray)

	response := InspectResponse{Kind: "miss"}
	switch outcome {
	case geometry.Ignored:
		response.Kind = "ignored"
	case geometry.Hit:
		response.Hit = true
		response.Point = vec3Array(hit.Point)
		response.Normal = vec3Array(hit.Normal)
		response.UV = [2]float64{hit.UV.X, hit.UV.Y}
		response.Distance = hit.T

		if areaLight != nil {
			response.Kind = "light"
			response.Radiance = vec3Array(areaLight.Radiance)
		} else {
			response.Kind = "object"
			response.Material = materialInfo(hit.Material)
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// materialInfo flattens the sampled material parameters for display
func materialInfo(m material.Sampled) map[string]interface{} {
	return map[string]interface{}{
		"baseColor":      vec3Array(m.BaseColor),
		"subsurface":     m.Subsurface,
		"metallic":       m.Metallic,
		"specular":       m.Specular,
		"specularTint":   m.SpecularTint,
		"roughness":      m.Roughness,
		"anisotropic":    m.Anisotropic,
		"sheen":          m.Sheen,
		"sheenTint":      m.SheenTint,
		"clearcoat":      m.Clearcoat,
		"clearcoatGloss": m.ClearcoatGloss,
		"transmission":   m.Transmission,
		"ior":            m.IOR,
	}
}

func badRequest(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
