package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/disk"
	"github.com/df07/go-blackhole-raytracer/pkg/geodesic"
	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
)

// descriptions are the one-line summaries shown for each preset
var descriptions = map[string]string{
	"default": "Schwarzschild hole with a turbulent disk seen from slightly above",
	"edge-on": "Disk seen almost exactly edge-on, showing the lensed far side",
	"kerr":    "Rapidly spinning hole with a disk reaching down to its ISCO",
	"orbit":   "Animated orbit around the hole while the disk rotates",
	"viscous": "Thin disk with a viscous temperature profile",
}

var presets = map[string]func() *Scene{
	"default": NewDefaultScene,
	"edge-on": NewEdgeOnScene,
	"kerr":    NewKerrScene,
	"orbit":   NewOrbitScene,
	"viscous": NewViscousScene,
}

// NewDefaultScene creates the base scene every preset starts from
func NewDefaultScene() *Scene {
	render := renderer.DefaultConfig()
	render.TileSize = 32

	return &Scene{
		Name:        "default",
		Description: descriptions["default"],
		Camera: renderer.CameraConfig{
			Position: core.NewVec3(0, 2.5, -30),
			LookAt:   core.NewVec3(0, 0, 0),
			Up:       core.NewVec3(0, 1, 0),
			VFov:     40,
		},
		Render:  render,
		Resolve: renderer.DefaultResolveConfig(),
		Physics: Physics{
			HorizonRadius: 1,
			StepsPerPass:  256,
			Step:          geodesic.DefaultStepConfig(),
			Classifier:    geodesic.DefaultClassifierConfig(),
		},
		DiskEnabled: true,
		Disk:        disk.DefaultParams(),
		Skybox: SkyboxConfig{
			Type:      Starfield,
			Intensity: 1,
		},
		Blackbody: BlackbodyConfig{
			Width:  128,
			Height: 64,
		},
	}
}

// NewEdgeOnScene places the camera just above the disk plane
func NewEdgeOnScene() *Scene {
	s := NewDefaultScene()
	s.Name = "edge-on"
	s.Description = descriptions["edge-on"]
	s.Camera.Position = core.NewVec3(0, 0.3, -30)
	s.Camera.VFov = 30
	return s
}

// NewKerrScene spins the hole and moves the disk's inner edge to the prograde ISCO
func NewKerrScene() *Scene {
	s := NewDefaultScene()
	s.Name = "kerr"
	s.Description = descriptions["kerr"]
	s.Camera.Position = core.NewVec3(0, 4, -28)
	s.Physics.Spin = 0.9
	s.Disk.SpinAware = true
	s.Disk.InnerRadius = 1
	return s
}

// NewOrbitScene renders a low resolution animated fly-around
func NewOrbitScene() *Scene {
	s := NewDefaultScene()
	s.Name = "orbit"
	s.Description = descriptions["orbit"]
	s.Render.Width = 320
	s.Render.Height = 180
	s.Render.MaxSoftPasses = 30
	s.Render.MaxPasses = 60
	s.Camera.Position = core.NewVec3(0, 3, -26)
	s.Animation = renderer.Animator{
		FrameCount:      48,
		FramesPerSecond: 12,
		SweepDegrees:    360,
	}
	return s
}

// NewViscousScene uses the thin-disk temperature profile with a flat slab
func NewViscousScene() *Scene {
	s := NewDefaultScene()
	s.Name = "viscous"
	s.Description = descriptions["viscous"]
	s.Camera.Position = core.NewVec3(0, 6, -26)
	s.Disk.Profile = disk.Viscous
	s.Disk.PeakTemperature = 14000
	s.Disk.Thickness = 0
	s.Disk.NoiseMultiplier = 2.5
	return s
}

// Create returns a fresh copy of the named preset
func Create(name string) (*Scene, error) {
	create, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	return create(), nil
}

// Names returns the preset names in sorted order
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
