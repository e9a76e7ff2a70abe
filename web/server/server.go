package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prism-render/prism/pkg/log"
	"github.com/prism-render/prism/pkg/renderer"
	"github.com/prism-render/prism/pkg/scene"
)

const defaultTileSize = 64

// Config holds the server settings.
type Config struct {
	Port      int
	ScenesDir string // Directory holding JSON scene descriptions
	StaticDir string // Directory with the web frontend; empty disables it
}

// Server streams progressive renders to web clients
type Server struct {
	config Config
	logger log.Logger
}

// New creates a web server
func New(config Config, logger log.Logger) *Server {
	return &Server{config: config, logger: logger}
}

// RenderRequest holds the validated query parameters of a render request
type RenderRequest struct {
	Scene              string
	Width              int
	Height             int
	MaxSamples         int
	MaxPasses          int
	BounceLimit        int
	AdaptiveMinSamples float64
	AdaptiveThreshold  float64
}

// Start runs the HTTP server until it fails
func (s *Server) Start() error {
	mux := http.NewServeMux()
	if s.config.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Noticef("serving on http://localhost%s", addr)
	return http.ListenAndServe(addr, mux)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists the scene names available for rendering
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	entries, err := os.ReadDir(s.config.ScenesDir)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string][]string{"scenes": names})
}

// handleSceneConfig returns a scene's render defaults and the accepted
// parameter ranges
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	name := r.URL.Query().Get("scene")
	sc, err := s.loadScene(name)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	defaults := renderer.DefaultSamplingConfig()
	maxSamples := sc.Camera.NumSamples
	if maxSamples == 0 {
		maxSamples = defaults.SamplesPerPixel
	}
	bounceLimit := sc.Camera.BounceLimit
	if bounceLimit == 0 {
		bounceLimit = defaults.BounceLimit
	}

	response := map[string]interface{}{
		"scene": name,
		"defaults": map[string]interface{}{
			"width":              sc.Camera.Width,
			"height":             sc.Camera.Height,
			"maxSamples":         maxSamples,
			"bounceLimit":        bounceLimit,
			"adaptiveMinSamples": defaults.AdaptiveMinSamples,
			"adaptiveThreshold":  defaults.AdaptiveThreshold,
		},
		"limits": map[string]interface{}{
			"width":              map[string]int{"min": 16, "max": 2000},
			"height":             map[string]int{"min": 16, "max": 2000},
			"maxSamples":         map[string]int{"min": 1, "max": 10000},
			"maxPasses":          map[string]int{"min": 1, "max": 10000},
			"bounceLimit":        map[string]int{"min": 1, "max": 1000},
			"adaptiveMinSamples": map[string]float64{"min": 0.01, "max": 1.0},
			"adaptiveThreshold":  map[string]float64{"min": 0.001, "max": 0.5},
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loadScene loads a scene by name from the scenes directory. Names must
// be bare so clients cannot reach outside the directory.
func (s *Server) loadScene(name string) (*scene.Scene, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("invalid scene name %q", name)
	}
	return scene.Load(filepath.Join(s.config.ScenesDir, name+".json"))
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
