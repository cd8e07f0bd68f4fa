package scene

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/disk"
	"github.com/df07/go-blackhole-raytracer/pkg/geodesic"
	"github.com/df07/go-blackhole-raytracer/pkg/loaders"
	"github.com/df07/go-blackhole-raytracer/pkg/noise"
	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid scene config")

// SkyboxType selects the background
type SkyboxType string

const (
	Starfield SkyboxType = "starfield"
	CubeMap   SkyboxType = "cubemap"
	Uniform   SkyboxType = "uniform"
)

// SkyboxConfig describes the background radiance
type SkyboxConfig struct {
	Type      SkyboxType `json:"type"`
	Path      string     `json:"path,omitempty"`  // Directory holding the cube map faces
	Color     core.Vec3  `json:"color"`           // Uniform sky color
	Intensity float64    `json:"intensity"`
}

// BlackbodyConfig selects the color lookup table. An empty path computes the
// table procedurally from the disk's shift and temperature ranges.
type BlackbodyConfig struct {
	Path   string `json:"path,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Physics describes the hole and the integration policy
type Physics struct {
	HorizonRadius float64                   `json:"horizonRadius"` // r_s in world units
	Spin          float64                   `json:"spin"`          // Dimensionless, in [-1, 1]
	StepsPerPass  int                       `json:"stepsPerPass"`
	Step          geodesic.StepConfig       `json:"step"`
	Classifier    geodesic.ClassifierConfig `json:"classifier"`
}

// Scene holds everything needed to render a frame or a sequence
type Scene struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Camera      renderer.CameraConfig  `json:"camera"`
	Render      renderer.Config        `json:"render"`
	Resolve     renderer.ResolveConfig `json:"resolve"`
	Animation   renderer.Animator      `json:"animation"`
	Physics     Physics                `json:"physics"`
	DiskEnabled bool                   `json:"diskEnabled"`
	Disk        disk.Params            `json:"disk"`
	Skybox      SkyboxConfig           `json:"skybox"`
	Blackbody   BlackbodyConfig        `json:"blackbody"`
}

// Validate checks that every value is in range. Errors wrap ErrInvalidConfig.
func (s *Scene) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	r := s.Render
	switch {
	case r.Width <= 0 || r.Height <= 0:
		return invalid("resolution must be positive, got %dx%d", r.Width, r.Height)
	case r.Oversample < 1:
		return invalid("oversample must be at least 1, got %d", r.Oversample)
	case r.MaxPasses < 1:
		return invalid("maxPasses must be at least 1, got %d", r.MaxPasses)
	case r.MaxSoftPasses < 0 || r.MaxSoftPasses > r.MaxPasses:
		return invalid("maxSoftPasses must be in [0, %d], got %d", r.MaxPasses, r.MaxSoftPasses)
	case r.NumWorkers < 0:
		return invalid("numWorkers must not be negative, got %d", r.NumWorkers)
	case r.UpdateIntervalMs < 0:
		return invalid("updateIntervalMs must not be negative, got %d", r.UpdateIntervalMs)
	}

	c := s.Camera
	if c.VFov <= 0 || c.VFov >= 180 {
		return invalid("camera vfov must be in (0, 180), got %g", c.VFov)
	}
	if c.Position.Subtract(c.LookAt).Length() == 0 {
		return invalid("camera position and lookAt coincide")
	}

	p := s.Physics
	switch {
	case p.HorizonRadius <= 0:
		return invalid("horizonRadius must be positive, got %g", p.HorizonRadius)
	case math.Abs(p.Spin) > 1:
		return invalid("spin must be in [-1, 1], got %g", p.Spin)
	case p.StepsPerPass < 1:
		return invalid("stepsPerPass must be at least 1, got %d", p.StepsPerPass)
	case p.Step.TimeStep <= 0 || p.Step.PoleStep <= 0:
		return invalid("step sizes must be positive")
	case p.Step.PoleMargin < 0 || p.Step.PoleMargin >= 0.5:
		return invalid("step poleMargin must be in [0, 0.5), got %g", p.Step.PoleMargin)
	case p.Classifier.PoleMargin < 0 || p.Classifier.PoleMargin >= 0.5:
		return invalid("classifier poleMargin must be in [0, 0.5), got %g", p.Classifier.PoleMargin)
	case p.Classifier.BoundOrbitMargin < 0:
		return invalid("boundOrbitMargin must not be negative, got %g", p.Classifier.BoundOrbitMargin)
	}

	// A camera outside the escape sphere would see every ray escape on its first step
	if distance := c.Position.Length(); p.Classifier.EscapeDistance*p.HorizonRadius <= distance {
		return invalid("escapeDistance %g r_s does not enclose the camera at %g", p.Classifier.EscapeDistance, distance)
	}

	if s.DiskEnabled {
		if err := validateDisk(s.Disk); err != nil {
			return err
		}
	}

	switch s.Skybox.Type {
	case Starfield, Uniform:
	case CubeMap:
		if s.Skybox.Path == "" {
			return invalid("cubemap skybox needs a path")
		}
	default:
		return invalid("unknown skybox type %q", s.Skybox.Type)
	}
	if s.Skybox.Intensity < 0 {
		return invalid("skybox intensity must not be negative, got %g", s.Skybox.Intensity)
	}

	if s.Blackbody.Path == "" && (s.Blackbody.Width < 1 || s.Blackbody.Height < 1) {
		return invalid("procedural blackbody size must be positive, got %dx%d", s.Blackbody.Width, s.Blackbody.Height)
	}

	if s.Animation.FrameCount < 0 || s.Animation.FramesPerSecond < 0 {
		return invalid("animation frameCount and framesPerSecond must not be negative")
	}
	if s.Resolve.Exposure < 0 || s.Resolve.Gamma < 0 {
		return invalid("exposure and gamma must not be negative")
	}
	return nil
}

func validateDisk(d disk.Params) error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: disk %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case d.InnerRadius < 0 || d.OuterRadius <= d.InnerRadius:
		return invalid("radii must satisfy 0 <= inner < outer, got %g and %g", d.InnerRadius, d.OuterRadius)
	case d.PeakTemperature <= 0:
		return invalid("peakTemperature must be positive, got %g", d.PeakTemperature)
	case d.Profile != disk.PowerLaw && d.Profile != disk.Viscous:
		return invalid("unknown temperature profile %q", d.Profile)
	case d.MarchSteps < 0 || (d.MarchSteps > 0 && d.MarchStep <= 0):
		return invalid("march needs a positive step, got %d steps of %g", d.MarchSteps, d.MarchStep)
	case d.NoiseOctaves < 0:
		return invalid("noiseOctaves must not be negative, got %d", d.NoiseOctaves)
	case d.ShiftMax <= d.ShiftMin:
		return invalid("shift range [%g, %g] is empty", d.ShiftMin, d.ShiftMax)
	case d.TemperatureMax <= d.TemperatureMin:
		return invalid("temperature range [%g, %g] is empty", d.TemperatureMin, d.TemperatureMax)
	case d.Thickness < 0:
		return invalid("thickness must not be negative, got %g", d.Thickness)
	}
	return nil
}

// LoadSkybox builds the configured background
func (s *Scene) LoadSkybox() (core.Skybox, error) {
	switch s.Skybox.Type {
	case CubeMap:
		sky, err := loaders.LoadCubeMap(s.Skybox.Path, s.Skybox.Intensity)
		if err != nil {
			return nil, fmt.Errorf("failed to load skybox: %w", err)
		}
		return sky, nil
	case Uniform:
		return loaders.NewUniformSkybox(s.Skybox.Color.Multiply(s.Skybox.Intensity)), nil
	default:
		sky := loaders.NewStarfieldSkybox()
		sky.Intensity *= s.Skybox.Intensity
		sky.Haze *= s.Skybox.Intensity
		return sky, nil
	}
}

// LoadBlackbody loads or computes the disk color table
func (s *Scene) LoadBlackbody() (core.Blackbody, error) {
	if s.Blackbody.Path != "" {
		table, err := loaders.LoadBlackbodyTable(s.Blackbody.Path)
		if err != nil {
			return nil, err
		}
		return table, nil
	}
	d := s.Disk
	return loaders.NewProceduralBlackbody(s.Blackbody.Width, s.Blackbody.Height,
		d.ShiftMin, d.ShiftMax, d.TemperatureMin, d.TemperatureMax), nil
}

// NewKernel validates the scene and assembles the per-ray kernel
func (s *Scene) NewKernel() (*renderer.Kernel, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	sky, err := s.LoadSkybox()
	if err != nil {
		return nil, err
	}

	kernel := &renderer.Kernel{
		Metric:       geodesic.NewMetric(s.Physics.HorizonRadius, s.Physics.Spin),
		Skybox:       sky,
		Step:         s.Physics.Step,
		Classifier:   s.Physics.Classifier,
		StepsPerPass: s.Physics.StepsPerPass,
	}

	if s.DiskEnabled {
		blackbody, err := s.LoadBlackbody()
		if err != nil {
			return nil, err
		}
		kernel.Shader = disk.NewShader(s.Disk, s.Physics.HorizonRadius, s.Physics.Spin, blackbody)
	}
	return kernel, nil
}

// NewSession builds a render session for the scene
func (s *Scene) NewSession(logger core.Logger) (*renderer.Session, error) {
	kernel, err := s.NewKernel()
	if err != nil {
		return nil, err
	}
	return renderer.NewSession(s.Render, kernel, s.Camera, logger), nil
}

// NewDither returns the dither texture used when resolving frames
func NewDither() *noise.DitherTexture {
	return noise.NewDitherTexture(128, 128, 0.37, 0.5, 4)
}

// ResolveFrame converts a finished frame to an 8-bit image at the scene's output resolution
func (s *Scene) ResolveFrame(frame *renderer.Frame, dither *noise.DitherTexture) *image.RGBA {
	return renderer.Resolve(frame, s.Render.Width, s.Render.Height, s.Resolve, dither)
}
