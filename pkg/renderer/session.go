package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Config contains configuration for the render loop
type Config struct {
	Width            int `json:"width"`            // Output width in pixels
	Height           int `json:"height"`           // Output height in pixels
	Oversample       int `json:"oversample"`       // Rays per output pixel along each axis
	TileSize         int `json:"tileSize"`         // Size of each tile (64x64 recommended)
	NumWorkers       int `json:"numWorkers"`       // Number of parallel workers (0 = use CPU count)
	MaxSoftPasses    int `json:"maxSoftPasses"`    // Pass after which hard capture checks are enabled (0 = never)
	MaxPasses        int `json:"maxPasses"`        // Pass at which a frame is forced complete
	UpdateIntervalMs int `json:"updateIntervalMs"` // Minimum wall-clock time between completeness scans
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:            640,
		Height:           360,
		Oversample:       1,
		TileSize:         64,
		NumWorkers:       0, // Auto-detect CPU count
		MaxSoftPasses:    40,
		MaxPasses:        80,
		UpdateIntervalMs: 1000,
	}
}

// BufferSize returns the dimensions of the oversampled ray buffer
func (c Config) BufferSize() (width, height int) {
	factor := max(c.Oversample, 1)
	return c.Width * factor, c.Height * factor
}

// State is a render loop state
type State int

const (
	Idle State = iota
	Initializing
	Marching
	Scanning
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Marching:
		return "marching"
	case Scanning:
		return "scanning"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PassUpdate is reported after every marching pass
type PassUpdate struct {
	Frame   int
	Pass    int
	State   State // State the loop moved to after the pass
	Last    PassStats
	Stats   RenderStats
	Elapsed time.Duration // Time spent on the frame so far
}

// Frame is a finished image in linear float RGBA at buffer resolution
type Frame struct {
	Index      int
	Time       float64
	Camera     CameraConfig
	Width      int
	Height     int
	Oversample int
	Pixels     []core.Vec4 // Row-major, row 0 at the top
	Complete   bool        // Every ray terminated before the pass limit
	Stats      RenderStats
}

// Session owns all mutable render state: buffers, counters, the hard check
// flag and the scan cursor. A Session is not safe for concurrent use.
type Session struct {
	config Config
	kernel *Kernel
	camera CameraConfig
	logger core.Logger
	now    func() time.Time

	state     State
	frame     int
	time      float64
	pass      int
	hardCheck bool
	scanner   Scanner
	lastScan  time.Time
	stats     RenderStats
	started   time.Time

	lastPassStats PassStats

	buffer *RayBuffer
	tiles  []*Tile
	pool   *WorkerPool
}

// NewSession creates an idle session. The kernel is shared read-only with the workers.
func NewSession(config Config, kernel *Kernel, camera CameraConfig, logger core.Logger) *Session {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Session{
		config: config,
		kernel: kernel,
		camera: camera,
		logger: logger,
		now:    time.Now,
		state:  Idle,
	}
}

// State returns the current state
func (s *Session) State() State { return s.state }

// Pass returns the number of passes run on the current frame
func (s *Session) Pass() int { return s.pass }

// HardCheck reports whether hard capture checks are active
func (s *Session) HardCheck() bool { return s.hardCheck }

// Time returns the coordinate time of the current frame
func (s *Session) Time() float64 { return s.time }

// SetTime sets the coordinate time used from the next pass on
func (s *Session) SetTime(t float64) { s.time = t }

// Camera returns the camera of the current frame
func (s *Session) Camera() CameraConfig { return s.camera }

// SetCamera moves the camera. It takes effect when the next frame is seeded.
func (s *Session) SetCamera(camera CameraConfig) { s.camera = camera }

// Config returns the render loop configuration
func (s *Session) Config() Config { return s.config }

// SetResolution changes the output size and oversampling. Buffers are
// reallocated when the next frame is seeded.
func (s *Session) SetResolution(width, height, oversample int) {
	s.config.Width = width
	s.config.Height = height
	s.config.Oversample = oversample
}

// Buffer returns the ray buffer of the current frame
func (s *Session) Buffer() *RayBuffer { return s.buffer }

// Stats returns the statistics of the current frame
func (s *Session) Stats() RenderStats { return s.stats }

// Tick performs exactly one state transition
func (s *Session) Tick() (State, error) {
	switch s.state {
	case Idle:
		s.state = Initializing

	case Initializing:
		s.initialize()
		s.state = Marching

	case Marching:
		if err := s.march(); err != nil {
			return s.state, err
		}
		switch {
		case s.config.MaxPasses > 0 && s.pass >= s.config.MaxPasses:
			s.timeout()
			s.state = Complete
		case s.scanDue():
			s.state = Scanning
		}

	case Scanning:
		s.lastScan = s.now()
		s.stats.Scans++
		if s.scanner.Scan(s.buffer) {
			s.state = Complete
		} else {
			s.state = Marching
		}

	case Complete:
		// Stays complete until the next frame is started
	}

	return s.state, nil
}

// initialize seeds every ray and resets the per-frame counters
func (s *Session) initialize() {
	width, height := s.config.BufferSize()
	if s.buffer == nil || s.buffer.Width != width || s.buffer.Height != height {
		s.buffer = NewRayBuffer(width, height)
		s.tiles = NewTileGrid(width, height, s.config.TileSize)
		if s.pool != nil && s.pool.Capacity() < len(s.tiles) {
			s.pool.Stop()
			s.pool = nil
		}
	}

	camera := NewCamera(s.camera, width, height)
	s.buffer.Seed(camera, s.kernel.Metric.HorizonRadius())

	s.pass = 0
	s.hardCheck = false
	s.scanner.Reset()
	s.started = s.now()
	s.lastScan = s.started
	s.stats = RenderStats{TotalPixels: width * height}
	for _, tile := range s.tiles {
		tile.PassesCompleted = 0
	}
}

// march dispatches one pass over every tile and waits for all of them
func (s *Session) march() error {
	if s.pool == nil {
		s.pool = NewWorkerPool(s.kernel, len(s.tiles), s.config.NumWorkers)
		s.pool.Start()
	}

	frame := FrameParams{HardCheck: s.hardCheck, Time: s.time}
	for i, tile := range s.tiles {
		s.pool.SubmitTask(TileTask{
			Tile:   tile,
			Buffer: s.buffer,
			Frame:  frame,
			TaskID: i,
		})
	}

	// Drain every result before reporting an error so the pool stays reusable
	var pass PassStats
	var firstErr error
	for range s.tiles {
		result, ok := s.pool.GetResult()
		if !ok {
			return fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil && firstErr == nil {
			firstErr = result.Error
		}
		s.tiles[result.TaskID].PassesCompleted++
		pass.Merge(result.Stats)
	}
	if firstErr != nil {
		return fmt.Errorf("pass %d: %w", s.pass+1, firstErr)
	}

	s.pass++
	s.stats.Passes = s.pass
	s.stats.Totals.Merge(pass)
	s.lastPassStats = pass

	if !s.hardCheck && s.config.MaxSoftPasses > 0 && s.pass >= s.config.MaxSoftPasses {
		s.hardCheck = true
		s.stats.HardCheckPass = s.pass
		s.logger.Printf("Pass %d: enabling hard capture checks (%d rays unresolved)\n",
			s.pass, s.stats.TotalPixels-s.stats.CompletedPixels())
	}
	return nil
}

func (s *Session) scanDue() bool {
	interval := time.Duration(s.config.UpdateIntervalMs) * time.Millisecond
	return s.now().Sub(s.lastScan) >= interval
}

// timeout completes the frame at the pass limit, keeping in-progress colors
func (s *Session) timeout() {
	s.stats.Unresolved = s.buffer.CountIncomplete()
	if s.stats.Unresolved == 0 {
		return
	}
	s.stats.TimedOut = true
	s.logger.Printf("Pass limit %d reached with %d unresolved rays, completing frame\n",
		s.config.MaxPasses, s.stats.Unresolved)
}

// snapshot copies the current buffer into a Frame
func (s *Session) snapshot() *Frame {
	return &Frame{
		Index:      s.frame,
		Time:       s.time,
		Camera:     s.camera,
		Width:      s.buffer.Width,
		Height:     s.buffer.Height,
		Oversample: max(s.config.Oversample, 1),
		Pixels:     s.buffer.Colors(),
		Complete:   s.stats.Unresolved == 0,
		Stats:      s.stats,
	}
}

// RenderFrame ticks until the current frame is complete. onPass, if not nil,
// is called after every marching pass. The context is checked between
// transitions; a pass in flight always runs to the end.
func (s *Session) RenderFrame(ctx context.Context, onPass func(PassUpdate)) (*Frame, error) {
	if s.state == Complete {
		s.state = Idle
	}

	for s.state != Complete {
		select {
		case <-ctx.Done():
			s.logger.Printf("Rendering cancelled at pass %d of frame %d\n", s.pass, s.frame)
			return nil, ctx.Err()
		default:
		}

		before := s.state
		state, err := s.Tick()
		if err != nil {
			return nil, err
		}

		if before == Marching && onPass != nil {
			onPass(PassUpdate{
				Frame:   s.frame,
				Pass:    s.pass,
				State:   state,
				Last:    s.lastPassStats,
				Stats:   s.stats,
				Elapsed: s.now().Sub(s.started),
			})
		}
	}

	s.logger.Printf("Frame %d completed in %v after %d passes (%d/%d rays resolved)\n",
		s.frame, s.now().Sub(s.started), s.pass, s.stats.CompletedPixels(), s.stats.TotalPixels)
	return s.snapshot(), nil
}

// RenderSequence renders animator.FrameCount frames (at least one) with
// channel-based communication, advancing time and camera between frames.
// The session must not be used by the caller until the channels are closed.
func (s *Session) RenderSequence(ctx context.Context, animator Animator) (<-chan PassUpdate, <-chan *Frame, <-chan error) {
	passChan := make(chan PassUpdate, 16)
	frameChan := make(chan *Frame, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(frameChan)
		defer close(errChan)
		defer s.Close()

		frames := max(animator.FrameCount, 1)
		s.logger.Printf("Starting render of %d frame(s)...\n", frames)

		onPass := func(update PassUpdate) {
			select {
			case passChan <- update:
			case <-ctx.Done():
			default:
				// Slow consumer, drop the progress update
			}
		}

		for i := 0; i < frames; i++ {
			frame, err := s.RenderFrame(ctx, onPass)
			if err != nil {
				errChan <- err
				return
			}

			select {
			case frameChan <- frame:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}

			s.camera, s.time = animator.Advance(s.camera, s.time)
			s.frame++
		}
	}()

	return passChan, frameChan, errChan
}

// Close stops the worker pool. The session may be used again afterwards.
func (s *Session) Close() {
	if s.pool != nil {
		s.pool.Stop()
		s.pool = nil
	}
}
