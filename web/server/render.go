package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/noise"
	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
	"github.com/df07/go-blackhole-raytracer/pkg/scene"
)

// PassUpdate is the "passComplete" event payload
type PassUpdate struct {
	Frame          int     `json:"frame"`
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	State          string  `json:"state"`
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	ResolvedPixels int     `json:"resolvedPixels"`
	Progress       float64 `json:"progress"`
	Steps          int     `json:"steps"`
	Crossings      int     `json:"crossings"`
	HardCheck      bool    `json:"hardCheck"`
}

// FrameUpdate is the "frame" event payload
type FrameUpdate struct {
	Frame       int     `json:"frame"`
	TotalFrames int     `json:"totalFrames"`
	Time        float64 `json:"time"`
	ImageData   string  `json:"imageData"` // Base64 encoded PNG
	Passes      int     `json:"passes"`
	Complete    bool    `json:"complete"`
	Unresolved  int     `json:"unresolved"`
	ElapsedMs   int64   `json:"elapsedMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "passComplete", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders a scene and streams pass progress and finished frames via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	s.setSSEHeaders(w)

	// The writer follows the client; everything else also stops when the handler returns
	clientCtx := r.Context()
	ctx, cancel := context.WithCancel(clientCtx)

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	var producers sync.WaitGroup

	// Start single SSE writer goroutine
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, clientCtx, sseEventChan)
	}()
	defer func() {
		cancel()
		producers.Wait()
		close(sseEventChan)
		<-writerDone
	}()

	// Parse and validate request
	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Setup console logging and streaming
	consoleChan, webLogger := s.setupConsoleLogging()
	producers.Add(1)
	go func() {
		defer producers.Done()
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()

	sceneObj, err := s.createScene(req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	session, err := sceneObj.NewSession(webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	// Start rendering and stream events
	startTime := time.Now()
	passChan, frameChan, errChan := session.RenderSequence(ctx, sceneObj.Animation)
	s.handleRenderingEvents(ctx, sseEventChan, passChan, frameChan, errChan, sceneObj, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				// Channel closed
				return
			}

			// Write SSE event
			_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			if err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages handles the console message streaming goroutine
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			// Send console message as SSE event
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}
			s.trySend(ctx, sseEventChan, SSEEvent{Type: "console", Data: string(data)})

		case <-ctx.Done():
			// Render finished or client disconnected
			return
		}
	}
}

// handleRenderingEvents processes the main rendering event loop
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan SSEEvent,
	passChan <-chan renderer.PassUpdate, frameChan <-chan *renderer.Frame, errChan <-chan error,
	sceneObj *scene.Scene, startTime time.Time) {

	dither := scene.NewDither()
	totalFrames := max(sceneObj.Animation.FrameCount, 1)

	for passChan != nil || frameChan != nil {
		select {
		case update, ok := <-passChan:
			if !ok {
				passChan = nil // Channel closed
				continue
			}
			s.handlePassComplete(ctx, sseEventChan, update, sceneObj.Render.MaxPasses)

		case frame, ok := <-frameChan:
			if !ok {
				frameChan = nil // Channel closed
				continue
			}
			s.handleFrame(ctx, sseEventChan, frame, sceneObj, dither, totalFrames, startTime)

		case <-ctx.Done():
			// Client disconnected; the session stops after its current pass
			return
		}
	}

	if err, ok := <-errChan; ok && err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	// Send completion event
	s.send(ctx, sseEventChan, SSEEvent{Type: "complete", Data: "Rendering completed"})
}

// handlePassComplete processes and sends pass completion events
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan SSEEvent, update renderer.PassUpdate, totalPasses int) {
	passUpdate := PassUpdate{
		Frame:          update.Frame,
		PassNumber:     update.Pass,
		TotalPasses:    totalPasses,
		State:          update.State.String(),
		ElapsedMs:      update.Elapsed.Milliseconds(),
		TotalPixels:    update.Stats.TotalPixels,
		ResolvedPixels: update.Stats.CompletedPixels(),
		Progress:       update.Stats.Progress(),
		Steps:          update.Last.Steps,
		Crossings:      update.Last.Crossings,
		HardCheck:      update.Stats.HardCheckPass > 0,
	}

	data, err := json.Marshal(passUpdate)
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return
	}

	// Progress is advisory; drop it rather than stall the render
	s.trySend(ctx, sseEventChan, SSEEvent{Type: "passComplete", Data: string(data)})
}

// handleFrame resolves a finished frame and sends it as a PNG
func (s *Server) handleFrame(ctx context.Context, sseEventChan chan SSEEvent, frame *renderer.Frame,
	sceneObj *scene.Scene, dither *noise.DitherTexture, totalFrames int, startTime time.Time) {

	imageData, err := s.imageToBase64PNG(sceneObj.ResolveFrame(frame, dither))
	if err != nil {
		log.Printf("Error encoding frame %d: %v", frame.Index, err)
		return
	}

	update := FrameUpdate{
		Frame:       frame.Index,
		TotalFrames: totalFrames,
		Time:        frame.Time,
		ImageData:   imageData,
		Passes:      frame.Stats.Passes,
		Complete:    frame.Complete,
		Unresolved:  frame.Stats.Unresolved,
		ElapsedMs:   time.Since(startTime).Milliseconds(),
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling frame update: %v", err)
		return
	}
	s.send(ctx, sseEventChan, SSEEvent{Type: "frame", Data: string(data)})
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	// Initialize request
	req := &RenderRequest{}

	// Parse common scene parameters using shared function
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	// Parse and validate render-specific parameters using helper functions
	query := r.URL.Query()
	var err error
	if req.Oversample, err = parseIntParam(query, "oversample", 0, 1, 4); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 0, 1, maxPassLimit); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(query, "frames", 0, 1, 360); err != nil {
		return nil, err
	}
	if req.Exposure, err = parseFloatParam(query, "exposure", 0, 0.01, 100); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height*max(req.Oversample, 1)*max(req.Oversample, 1) > 1920*1080 {
		log.Printf("Render warning: Large ray buffer may render slowly")
	}

	return req, nil
}

// send delivers an event unless the client has gone away
func (s *Server) send(ctx context.Context, sseEventChan chan SSEEvent, event SSEEvent) {
	select {
	case sseEventChan <- event:
	case <-ctx.Done():
	}
}

// trySend delivers an event if there is room in the channel
func (s *Server) trySend(ctx context.Context, sseEventChan chan SSEEvent, event SSEEvent) {
	select {
	case sseEventChan <- event:
	case <-ctx.Done():
	default:
		// Channel full, skip message to avoid blocking
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	s.send(ctx, sseEventChan, SSEEvent{Type: "error", Data: message})
}
