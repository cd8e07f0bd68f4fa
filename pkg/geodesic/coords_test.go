package geodesic

import (
	"math"
	"testing"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

func TestCartesianSphericalRoundTrip(t *testing.T) {
	points := []core.Vec3{
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 0, 1),
		core.NewVec3(3, 4, 5),
		core.NewVec3(-7, -2, 0.5),
		core.NewVec3(60, 40, -60),
	}

	const tolerance = 1e-12
	for _, p := range points {
		x := CartesianToSpherical(p)
		back := SphericalToCartesian(x)
		if back.Subtract(p).Length() > tolerance*p.Length() {
			t.Errorf("Round trip of %v gave %v", p, back)
		}
	}
}

func TestEquatorialPlaneIsThetaHalfPi(t *testing.T) {
	x := CartesianToSpherical(core.NewVec3(3, 0, -4))
	if x.Theta != math.Pi/2 {
		t.Errorf("Expected θ = π/2 in the XZ plane, got %v", x.Theta)
	}
	if math.Abs(x.R-5) > 1e-12 {
		t.Errorf("Expected r = 5, got %f", x.R)
	}
}

func TestDirectionRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		position  core.Vec3
		direction core.Vec3
	}{
		{"radial inward", core.NewVec3(10, 2, 3), core.NewVec3(-10, -2, -3).Normalize()},
		{"tangential", core.NewVec3(0, 0, 20), core.NewVec3(1, 0, 0)},
		{"oblique", core.NewVec3(-5, 7, 1), core.NewVec3(0.3, -0.5, 0.8).Normalize()},
	}

	const tolerance = 1e-12
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := CartesianToSpherical(tt.position)
			v := DirectionToSpherical(tt.position, tt.direction)
			back := VelocityToCartesian(x, v)
			if back.Subtract(tt.direction).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.direction, back)
			}
		})
	}
}

func TestLowerRaiseRoundTrip(t *testing.T) {
	const rs = 0.5
	x := Position{R: 12, Theta: 1.1, Phi: 0.4}
	v := Velocity{R: -0.7, Theta: 0.01, Phi: 0.03}

	p := LowerVelocity(x, v, rs)
	back := RaiseMomentum(x, p, rs)

	const tolerance = 1e-14
	if math.Abs(back.R-v.R) > tolerance || math.Abs(back.Theta-v.Theta) > tolerance || math.Abs(back.Phi-v.Phi) > tolerance {
		t.Errorf("Expected %+v, got %+v", v, back)
	}

	// Documented lowering factors
	a := 1 - rs/x.R
	sin2 := math.Sin(x.Theta) * math.Sin(x.Theta)
	if math.Abs(p.R-a*v.R) > tolerance {
		t.Errorf("Expected p_r = (1-rs/r)·ṙ = %f, got %f", a*v.R, p.R)
	}
	if math.Abs(p.Phi-x.R*x.R*sin2*v.Phi) > 1e-12 {
		t.Errorf("Expected p_φ = r² sin²θ·φ̇, got %f", p.Phi)
	}
}

func TestSeedRayRadialHasNoAngularMomentum(t *testing.T) {
	origin := core.NewVec3(60, 40, -60)
	x, p := SeedRay(origin, origin.Negate(), 0.5)

	if p.R >= 0 {
		t.Errorf("Expected inward radial momentum, got %f", p.R)
	}
	if math.Abs(p.Theta) > 1e-9 || math.Abs(p.Phi) > 1e-9 {
		t.Errorf("Expected no angular momentum, got p_θ=%g p_φ=%g", p.Theta, p.Phi)
	}
	if math.Abs(x.R-origin.Length()) > 1e-12 {
		t.Errorf("Expected r = %f, got %f", origin.Length(), x.R)
	}
}

func TestDirectionFollowsMetric(t *testing.T) {
	m := Schwarzschild{Rs: 0.5}
	origin := core.NewVec3(-100, 0, 5)
	dir := core.NewVec3(1, 0, 0)
	x, p := SeedRay(origin, dir, m.Rs)

	got := Direction(m, x, p)
	if got.Dot(dir) < 0.999 {
		t.Errorf("Expected direction close to %v far from the hole, got %v", dir, got)
	}
}
