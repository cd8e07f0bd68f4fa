package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/disk"
	"github.com/df07/go-blackhole-raytracer/pkg/loaders"
)

type quietLogger struct{}

func (quietLogger) Printf(format string, args ...interface{}) {}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := Create(name)
			if err != nil {
				t.Fatalf("Create(%q) failed: %v", name, err)
			}
			if s.Name != name {
				t.Errorf("Expected scene name %q, got %q", name, s.Name)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Preset %q does not validate: %v", name, err)
			}
		})
	}
}

func TestCreateUnknownScene(t *testing.T) {
	if _, err := Create("wormhole"); err == nil {
		t.Error("Expected error for unknown scene")
	}
}

func TestCreateReturnsFreshCopies(t *testing.T) {
	a, _ := Create("default")
	a.Render.Width = 1
	b, _ := Create("default")
	if b.Render.Width == 1 {
		t.Error("Expected presets not to share state")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scene)
	}{
		{"zero width", func(s *Scene) { s.Render.Width = 0 }},
		{"zero oversample", func(s *Scene) { s.Render.Oversample = 0 }},
		{"soft passes beyond limit", func(s *Scene) { s.Render.MaxSoftPasses = s.Render.MaxPasses + 1 }},
		{"flat fov", func(s *Scene) { s.Camera.VFov = 0 }},
		{"camera looks at itself", func(s *Scene) { s.Camera.LookAt = s.Camera.Position }},
		{"negative horizon", func(s *Scene) { s.Physics.HorizonRadius = -1 }},
		{"overspun", func(s *Scene) { s.Physics.Spin = 1.5 }},
		{"no steps", func(s *Scene) { s.Physics.StepsPerPass = 0 }},
		{"pole margin too wide", func(s *Scene) { s.Physics.Step.PoleMargin = 0.5 }},
		{"camera outside escape sphere", func(s *Scene) { s.Physics.Classifier.EscapeDistance = 10 }},
		{"inverted disk", func(s *Scene) { s.Disk.InnerRadius, s.Disk.OuterRadius = 12, 2 }},
		{"unknown profile", func(s *Scene) { s.Disk.Profile = "flat" }},
		{"empty shift range", func(s *Scene) { s.Disk.ShiftMax = s.Disk.ShiftMin }},
		{"cubemap without path", func(s *Scene) { s.Skybox.Type = CubeMap }},
		{"unknown skybox", func(s *Scene) { s.Skybox.Type = "nebula" }},
		{"empty blackbody table", func(s *Scene) { s.Blackbody.Width = 0 }},
		{"negative frames", func(s *Scene) { s.Animation.FrameCount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDefaultScene()
			tt.mutate(s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidateIgnoresDisabledDisk(t *testing.T) {
	s := NewDefaultScene()
	s.DiskEnabled = false
	s.Disk = disk.Params{}
	if err := s.Validate(); err != nil {
		t.Errorf("Expected disabled disk to skip validation, got %v", err)
	}
}

func TestNewKernel(t *testing.T) {
	s := NewKerrScene()
	s.Skybox = SkyboxConfig{Type: Uniform, Color: core.NewVec3(0.2, 0.4, 0.6), Intensity: 0.5}

	kernel, err := s.NewKernel()
	if err != nil {
		t.Fatalf("NewKernel failed: %v", err)
	}
	if kernel.Shader == nil {
		t.Fatal("Expected a disk shader")
	}
	if rs := kernel.Metric.HorizonRadius(); rs != 1 {
		t.Errorf("Expected r_s = 1, got %f", rs)
	}
	if got := kernel.Skybox.Sample(core.NewVec3(1, 0, 0)); got != core.NewVec3(0.1, 0.2, 0.3) {
		t.Errorf("Expected scaled uniform sky, got %v", got)
	}
	if kernel.StepsPerPass != s.Physics.StepsPerPass {
		t.Errorf("Expected %d steps per pass, got %d", s.Physics.StepsPerPass, kernel.StepsPerPass)
	}

	s.DiskEnabled = false
	kernel, err = s.NewKernel()
	if err != nil {
		t.Fatalf("NewKernel without disk failed: %v", err)
	}
	if kernel.Shader != nil {
		t.Error("Expected no shader when the disk is disabled")
	}
}

func TestNewKernelRejectsInvalidScene(t *testing.T) {
	s := NewDefaultScene()
	s.Render.Height = -1
	if _, err := s.NewKernel(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadSkyboxMissingCubeMap(t *testing.T) {
	s := NewDefaultScene()
	s.Skybox = SkyboxConfig{Type: CubeMap, Path: filepath.Join(t.TempDir(), "none"), Intensity: 1}
	if _, err := s.NewKernel(); err == nil {
		t.Error("Expected error for missing cube map faces")
	}
}

func TestLoadBlackbodyProcedural(t *testing.T) {
	s := NewDefaultScene()
	s.Blackbody = BlackbodyConfig{Width: 16, Height: 8}

	bb, err := s.LoadBlackbody()
	if err != nil {
		t.Fatalf("LoadBlackbody failed: %v", err)
	}
	table, ok := bb.(*loaders.BlackbodyTable)
	if !ok {
		t.Fatalf("Expected *loaders.BlackbodyTable, got %T", bb)
	}
	if table.Data.Width != 16 || table.Data.Height != 8 {
		t.Errorf("Expected 16x8 table, got %dx%d", table.Data.Width, table.Data.Height)
	}
}

func TestNewSessionRendersFrame(t *testing.T) {
	s := NewDefaultScene()
	s.Render.Width = 16
	s.Render.Height = 9
	s.Render.TileSize = 8
	s.Render.NumWorkers = 2
	s.Render.MaxSoftPasses = 1
	s.Render.MaxPasses = 2
	s.Render.UpdateIntervalMs = 0
	s.Physics.StepsPerPass = 64

	session, err := s.NewSession(quietLogger{})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer session.Close()

	frame, err := session.RenderFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if len(frame.Pixels) != 16*9 {
		t.Fatalf("Expected 144 pixels, got %d", len(frame.Pixels))
	}

	img := s.ResolveFrame(frame, NewDither())
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Errorf("Expected 16x9 image, got %v", b)
	}
}

func TestLoadConfigOverridesBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	content := `{
  "name": "close-up",
  "camera": {"position": {"x": 0, "y": 1, "z": -15}, "vfov": 25},
  "render": {"width": 200},
  "disk": {"peakTemperature": 12000}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	base := NewDefaultScene()
	s, err := LoadConfig(path, base)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if s.Name != "close-up" || s.Render.Width != 200 || s.Camera.VFov != 25 {
		t.Errorf("Expected overrides to apply, got name %q width %d vfov %f", s.Name, s.Render.Width, s.Camera.VFov)
	}
	if s.Camera.Position != core.NewVec3(0, 1, -15) {
		t.Errorf("Expected camera position override, got %v", s.Camera.Position)
	}
	if s.Disk.PeakTemperature != 12000 {
		t.Errorf("Expected disk temperature override, got %f", s.Disk.PeakTemperature)
	}

	// Everything else keeps the base values
	if s.Render.Height != base.Render.Height || s.Disk.OuterRadius != base.Disk.OuterRadius {
		t.Error("Expected unspecified fields to keep base values")
	}
	if base.Render.Width == 200 {
		t.Error("Expected base scene to be left untouched")
	}
}

func TestParseConfigPreset(t *testing.T) {
	s, err := ParseConfig([]byte(`{"preset": "kerr", "physics": {"spin": 0.5}}`), NewDefaultScene())
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if s.Name != "kerr" || !s.Disk.SpinAware {
		t.Errorf("Expected kerr preset values, got %q spinAware=%v", s.Name, s.Disk.SpinAware)
	}
	if s.Physics.Spin != 0.5 {
		t.Errorf("Expected spin override 0.5, got %f", s.Physics.Spin)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"render": `},
		{"unknown field", `{"render": {"widht": 10}}`},
		{"unknown preset", `{"preset": "wormhole"}`},
		{"out of range", `{"physics": {"spin": 2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.content), nil)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.json")
	original := NewOrbitScene()
	if err := original.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("Expected saved scene to load unchanged:\n%+v\n%+v", original, loaded)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Error("Expected error for missing file")
	}
}
