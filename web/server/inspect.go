package server

import (
	"net/http"
	"strconv"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/geodesic"
	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
	"github.com/df07/go-blackhole-raytracer/pkg/scene"
)

// maxPathPoints bounds the polyline returned for one geodesic
const maxPathPoints = 512

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Outcome         string       `json:"outcome"` // "captured", "escaped" or "pending"
	Steps           int          `json:"steps"`
	Crossings       int          `json:"crossings"`
	HardCheckStep   int          `json:"hardCheckStep"` // Step at which hard checks began, 0 if never
	Color           [4]float64   `json:"color"`         // Accumulated linear RGBA
	Energy          float64      `json:"energy"`
	ImpactParameter float64      `json:"impactParameter"` // C = L²/E²
	FinalRadius     float64      `json:"finalRadius"`
	Path            [][3]float64 `json:"path"` // World-space points along the geodesic
}

// InspectResult is the outcome of tracing a single pixel step by step
type InspectResult struct {
	Ray           renderer.RayState
	Steps         int
	HardCheckStep int
	Energy        float64
	Impact        float64
	Path          []core.Vec3
}

// inspectPixel traces the ray of one output pixel with the same pass and
// hard check schedule as a full render, recording its path.
func inspectPixel(sceneObj *scene.Scene, kernel *renderer.Kernel, pixelX, pixelY int) InspectResult {
	width, height := sceneObj.Render.Width, sceneObj.Render.Height
	camera := renderer.NewCamera(sceneObj.Camera, width, height)
	rs := kernel.Metric.HorizonRadius()

	var result InspectResult
	position, momentum := geodesic.SeedRay(camera.Origin(), camera.GetRay(pixelX, pixelY), rs)
	result.Ray = renderer.RayState{Position: position, Momentum: momentum}
	result.Energy = kernel.Metric.Energy(position, momentum)
	result.Impact = kernel.Metric.ImpactParameter(position, momentum)

	// March one step at a time so every position can be recorded
	single := *kernel
	single.StepsPerPass = 1

	softSteps := sceneObj.Render.MaxSoftPasses * kernel.StepsPerPass
	maxSteps := sceneObj.Render.MaxPasses * kernel.StepsPerPass
	stride := max(1, maxSteps/maxPathPoints)

	result.Path = append(result.Path, geodesic.SphericalToCartesian(position))
	frame := renderer.FrameParams{}
	for result.Steps < maxSteps && !result.Ray.Complete {
		if !frame.HardCheck && softSteps > 0 && result.Steps >= softSteps {
			frame.HardCheck = true
			result.HardCheckStep = result.Steps
		}

		single.March(&result.Ray, frame)
		result.Steps++

		if result.Steps%stride == 0 || result.Ray.Complete {
			result.Path = append(result.Path, geodesic.SphericalToCartesian(result.Ray.Position))
		}
	}
	return result
}

// handleInspect traces the geodesic behind one pixel
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	// Create request object for parameter parsing
	inspectReq := &RenderRequest{}

	// Parse common scene parameters using shared function
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}

	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	// Validate pixel coordinates
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	sceneObj, err := s.createScene(inspectReq, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	kernel, err := sceneObj.NewKernel()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Perform the inspection using the scene directly
	result := inspectPixel(sceneObj, kernel, pixelX, pixelY)

	ray := result.Ray
	response := InspectResponse{
		Outcome:         ray.Outcome.String(),
		Steps:           result.Steps,
		Crossings:       ray.Crossings,
		HardCheckStep:   result.HardCheckStep,
		Color:           [4]float64{ray.Color.X, ray.Color.Y, ray.Color.Z, ray.Color.A},
		Energy:          result.Energy,
		ImpactParameter: result.Impact,
		FinalRadius:     ray.Position.R,
		Path:            make([][3]float64, len(result.Path)),
	}
	for i, p := range result.Path {
		response.Path[i] = [3]float64{p.X, p.Y, p.Z}
	}

	writeJSON(w, http.StatusOK, response)
}
