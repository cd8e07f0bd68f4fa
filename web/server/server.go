package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/scene"
)

// Request limits shared by the render and inspect endpoints
const (
	minDimension = 16
	maxDimension = 2000
	maxPassLimit = 10000
)

// Server handles web requests for the black hole renderer
type Server struct {
	port      int
	scenesDir string // Directory scanned for JSON scene files
}

// NewServer creates a new web server
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string  `json:"scene"`      // Scene ID from /api/scenes
	Width      int     `json:"width"`      // Image width
	Height     int     `json:"height"`     // Image height
	Oversample int     `json:"oversample"` // Rays per pixel along each axis
	MaxPasses  int     `json:"maxPasses"`  // Pass limit per frame
	Frames     int     `json:"frames"`     // Frames to render
	Spin       float64 `json:"spin"`       // Dimensionless hole spin
	Exposure   float64 `json:"exposure"`   // Resolve exposure
}

// Handler returns the router serving static files and the API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and config scenes grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		log.Printf("Error listing scenes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the full configuration of a scene with the
// request limits the render endpoint enforces
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	if sceneID == "" {
		sceneID = "default"
	}

	sceneObj, err := scene.Resolve(sceneID, s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	response := map[string]interface{}{
		"scene":    sceneID,
		"defaults": sceneObj,
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": minDimension, "max": maxDimension},
			"height":     map[string]int{"min": minDimension, "max": maxDimension},
			"oversample": map[string]int{"min": 1, "max": 4},
			"maxPasses":  map[string]int{"min": 1, "max": maxPassLimit},
			"frames":     map[string]int{"min": 1, "max": 360},
			"spin":       map[string]float64{"min": -1, "max": 1},
			"exposure":   map[string]float64{"min": 0.01, "max": 100},
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// parseCommonSceneParams parses the scene and resolution shared by render and inspect
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()
	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 640, minDimension, maxDimension); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", 360, minDimension, maxDimension); err != nil {
		return err
	}
	if req.Spin, err = parseFloatParam(query, "spin", 0, -1, 1); err != nil {
		return err
	}
	return nil
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

// createScene resolves the requested scene and applies the request's overrides
func (s *Server) createScene(req *RenderRequest, logger core.Logger) (*scene.Scene, error) {
	sceneObj, err := scene.Resolve(req.Scene, s.scenesDir)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Printf("Loaded scene %s (%dx%d)\n", sceneObj.Name, req.Width, req.Height)
	}

	sceneObj.Render.Width = req.Width
	sceneObj.Render.Height = req.Height
	if req.Spin != 0 {
		sceneObj.Physics.Spin = req.Spin
	}
	if req.Oversample > 0 {
		sceneObj.Render.Oversample = req.Oversample
	}
	if req.MaxPasses > 0 {
		sceneObj.Render.MaxPasses = req.MaxPasses
		sceneObj.Render.MaxSoftPasses = min(sceneObj.Render.MaxSoftPasses, req.MaxPasses)
	}
	if req.Frames > 0 {
		sceneObj.Animation.FrameCount = req.Frames
	}
	if req.Exposure > 0 {
		sceneObj.Resolve.Exposure = req.Exposure
	}

	if err := sceneObj.Validate(); err != nil {
		return nil, err
	}
	return sceneObj, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
