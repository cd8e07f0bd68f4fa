package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func TestCameraCenterRayPointsAtTarget(t *testing.T) {
	tests := []struct {
		name     string
		position core.Vec3
	}{
		{"looking down -z", core.NewVec3(0, 0, 10)},
		{"looking down +x", core.NewVec3(-20, 0, 0)},
		{"elevated", core.NewVec3(30, 15, -40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera := NewCamera(CameraConfig{
				Position: tt.position,
				LookAt:   core.NewVec3(0, 0, 0),
				Up:       core.NewVec3(0, 1, 0),
				VFov:     40,
			}, 101, 101)

			got := camera.GetRay(50, 50)
			expected := tt.position.Negate().Normalize()
			if !vecClose(got, expected, 1e-9) {
				t.Errorf("Expected center ray %v, got %v", expected, got)
			}
		})
	}
}

func TestCameraFieldOfView(t *testing.T) {
	const vfov = 60.0
	const height = 200
	camera := NewCamera(CameraConfig{
		Position: core.NewVec3(0, 0, 10),
		LookAt:   core.NewVec3(0, 0, 0),
		VFov:     vfov,
	}, 300, height)

	// Top edge of the top row sits at +vfov/2; the pixel center is half a pixel lower
	top := camera.GetRay(150, 0)
	angle := math.Atan2(top.Y, -top.Z) * 180 / math.Pi
	halfPixel := math.Atan(math.Tan(vfov/2*math.Pi/180)*(1-1.0/height)) * 180 / math.Pi
	if math.Abs(angle-halfPixel) > 1e-6 {
		t.Errorf("Expected top row at %f degrees, got %f", halfPixel, angle)
	}
	if top.Y <= 0 {
		t.Errorf("Expected row 0 to look up, got %v", top)
	}
}

func TestCameraOrientation(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Position: core.NewVec3(0, 0, 10),
		LookAt:   core.NewVec3(0, 0, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     45,
	}, 64, 64)

	left := camera.GetRay(0, 32)
	right := camera.GetRay(63, 32)
	if left.X >= 0 || right.X <= 0 {
		t.Errorf("Expected column 0 to look left and the last column right, got %v and %v", left, right)
	}
	if math.Abs(left.X+right.X) > 1e-9 {
		t.Errorf("Expected symmetric edge rays, got %v and %v", left, right)
	}
	if math.Abs(left.Length()-1) > 1e-12 {
		t.Errorf("Expected unit direction, got length %f", left.Length())
	}
}

func TestCameraDefaultsUpVector(t *testing.T) {
	config := CameraConfig{
		Position: core.NewVec3(5, 2, 8),
		LookAt:   core.NewVec3(0, 0, 0),
		VFov:     30,
	}
	withDefault := NewCamera(config, 32, 16)
	config.Up = core.NewVec3(0, 1, 0)
	explicit := NewCamera(config, 32, 16)

	if !vecClose(withDefault.GetRay(3, 4), explicit.GetRay(3, 4), 1e-12) {
		t.Errorf("Expected zero up vector to default to +Y")
	}
	if withDefault.Origin() != config.Position {
		t.Errorf("Expected origin %v, got %v", config.Position, withDefault.Origin())
	}
}
