package geodesic

import (
	"math"
	"testing"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

func TestHorizonCheckInsidePhotonSphere(t *testing.T) {
	config := DefaultClassifierConfig()
	metrics := []Metric{Schwarzschild{Rs: 0.5}, Kerr{Rs: 0.5, Spin: 0.8}}

	for _, m := range metrics {
		for _, r := range []float64{0.1, 0.5, 0.74, -0.3} {
			for _, hard := range []bool{false, true} {
				x := Position{R: r, Theta: 1.0}
				p := Momentum{R: 1, Phi: 5}
				if !HorizonCheck(m, x, p, hard, config) {
					t.Errorf("%T r=%f hard=%v: expected capture inside 1.5·r_s", m, r, hard)
				}
			}
		}
	}
}

func TestHorizonCheckSoftIgnoresOrbitTest(t *testing.T) {
	config := DefaultClassifierConfig()
	m := Schwarzschild{Rs: 0.5}

	// Approaching radially from far away: C = 0, which the hard check captures
	x := Position{R: 40, Theta: math.Pi / 2}
	p := Momentum{R: -1}

	if HorizonCheck(m, x, p, false, config) {
		t.Errorf("Expected soft check to ignore bound orbit test")
	}
	if !HorizonCheck(m, x, p, true, config) {
		t.Errorf("Expected hard check to capture a ray below the critical impact parameter")
	}
}

func TestHorizonCheckHardLetsWideRaysGo(t *testing.T) {
	config := DefaultClassifierConfig()
	m := Schwarzschild{Rs: 0.5}

	// Tangential ray at r = 20: C ≈ r²/A, far above 27/4·r_s²
	x := Position{R: 20, Theta: math.Pi / 2}
	p := LowerVelocity(x, Velocity{Phi: 1.0 / 20}, m.Rs)
	p.R = -1e-3

	if HorizonCheck(m, x, p, true, config) {
		t.Errorf("Expected wide ray to survive the hard check, C=%f", m.ImpactParameter(x, p))
	}

	// Receding rays are never classified as bound
	radial := Momentum{R: 1}
	if HorizonCheck(m, x, radial, true, config) {
		t.Errorf("Expected receding radial ray to survive the hard check")
	}
}

func TestHorizonCheckHardPole(t *testing.T) {
	config := DefaultClassifierConfig()
	m := Schwarzschild{Rs: 0.5}
	x := Position{R: 1.2, Theta: 0.001}
	p := Momentum{R: 1, Theta: 0.1}

	if HorizonCheck(m, x, p, false, config) {
		t.Errorf("Expected soft check to ignore pole sticking")
	}
	if !HorizonCheck(m, x, p, true, config) {
		t.Errorf("Expected hard check to capture a ray stuck at the pole")
	}
}

func TestDiskCheckSameHemisphere(t *testing.T) {
	tests := []struct {
		name        string
		start, end  float64
		expectCross bool
	}{
		{"both north", 0.3, 1.4, false},
		{"both south", 1.7, 2.9, false},
		{"north to south", 1.5, 1.65, true},
		{"south to north", 1.65, 1.5, true},
		{"wrapped past south pole stays south", math.Pi - 0.1, math.Pi + 0.1, false},
		{"wrapped past north pole stays north", 0.1, -0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := Position{R: 5, Theta: tt.start}
			next := Position{R: 5, Theta: tt.end}
			_, crossed := DiskCheck(prev, next, 1, 10)
			if crossed != tt.expectCross {
				t.Errorf("Expected crossing=%v, got %v", tt.expectCross, crossed)
			}
		})
	}
}

func TestDiskCheckRadiusBounds(t *testing.T) {
	tests := []struct {
		name        string
		r0, r1      float64
		expectCross bool
	}{
		{"inside window", 4, 6, true},
		{"inside inner edge", 0.5, 0.7, false},
		{"beyond outer edge", 11, 12, false},
		{"exactly at outer edge", 10, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := Position{R: tt.r0, Theta: math.Pi/2 - 0.1}
			next := Position{R: tt.r1, Theta: math.Pi/2 + 0.1}
			_, crossed := DiskCheck(prev, next, 1, 10)
			if crossed != tt.expectCross {
				t.Errorf("Expected crossing=%v, got %v", tt.expectCross, crossed)
			}
		})
	}
}

func TestDiskCheckInterpolatesCrossing(t *testing.T) {
	prev := Position{R: 4, Theta: math.Pi/2 - 0.1, Phi: 0, T: 10}
	next := Position{R: 6, Theta: math.Pi/2 + 0.1, Phi: 0.2, T: 12}

	crossing, ok := DiskCheck(prev, next, 1, 10)
	if !ok {
		t.Fatalf("Expected crossing")
	}

	const tolerance = 1e-9
	if math.Abs(crossing.R-5) > tolerance || math.Abs(crossing.Phi-0.1) > tolerance || math.Abs(crossing.T-11) > tolerance {
		t.Errorf("Expected midpoint crossing, got %+v", crossing)
	}
}

func TestDiskCheckAzimuthPastPole(t *testing.T) {
	tests := []struct {
		name       string
		prev, next Position
		azimuth    float64
	}{
		{"regular", Position{R: 5, Theta: 1.4, Phi: 0.3}, Position{R: 5, Theta: 1.7, Phi: 0.3}, 0.3},
		{"over north pole", Position{R: 5, Theta: -1.4, Phi: 0.3}, Position{R: 5, Theta: -1.7, Phi: 0.3}, 0.3 + math.Pi},
		{"over south pole", Position{R: 5, Theta: 4.6, Phi: -1}, Position{R: 5, Theta: 4.8, Phi: -1}, -1 + math.Pi},
		{"negative radius", Position{R: -5, Theta: 1.4, Phi: 0.3}, Position{R: -5, Theta: 1.7, Phi: 0.3}, 0.3 + math.Pi},
	}

	const tolerance = 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crossing, ok := DiskCheck(tt.prev, tt.next, 1, 10)
			if !ok {
				t.Fatalf("Expected crossing")
			}
			if math.Abs(crossing.R-5) > tolerance {
				t.Errorf("Expected radius 5, got %f", crossing.R)
			}
			sin, cos := math.Sincos(crossing.Phi)
			wantSin, wantCos := math.Sincos(tt.azimuth)
			if math.Abs(sin-wantSin) > tolerance || math.Abs(cos-wantCos) > tolerance {
				t.Errorf("Expected azimuth %f, got %f", tt.azimuth, crossing.Phi)
			}
		})
	}
}

// A ray in the x = 0 plane aimed just above the hole swings over the north
// pole before reaching the disk on the far side (z > 0).
func TestDiskCheckMeridianRayCrossesFarSide(t *testing.T) {
	const rs = 1.0
	m := Schwarzschild{Rs: rs}
	config := DefaultStepConfig()
	x, p := SeedRay(core.NewVec3(0, 10, -14), core.NewVec3(0, -9.5, 18).Normalize(), rs)

	wrapped := false
	for i := 0; i < 100000; i++ {
		h := CalculateStepSize(x, p, rs, config)
		nx, np := RK4Step(m, x, p, h)
		wrapped = wrapped || nx.Theta < 0 || nx.Theta > math.Pi

		if crossing, ok := DiskCheck(x, nx, 0, 100); ok {
			if !wrapped {
				t.Fatalf("Expected the ray to pass over the pole first, theta=%f", nx.Theta)
			}
			sin, cos := math.Sincos(crossing.Phi)
			shaded := core.NewVec3(crossing.R*cos, 0, crossing.R*sin)
			actual := SphericalToCartesian(x).Add(SphericalToCartesian(nx)).Multiply(0.5)
			if shaded.Z <= 0 || shaded.Dot(actual) <= 0 {
				t.Errorf("Expected crossing on the far side near %v, got %v", actual, shaded)
			}
			return
		}

		if math.Abs(nx.R) < PhotonSphereFactor*rs {
			t.Fatalf("Ray captured before crossing the disk after %d steps", i)
		}
		x, p = nx, np
	}
	t.Fatal("Expected the ray to cross the disk plane")
}

func TestEscapeCheck(t *testing.T) {
	if EscapeCheck(Position{R: 499}, 0.5, 1000) {
		t.Errorf("Expected no escape below escape distance")
	}
	if !EscapeCheck(Position{R: 501}, 0.5, 1000) {
		t.Errorf("Expected escape beyond escape distance")
	}
	if !EscapeCheck(Position{R: -501}, 0.5, 1000) {
		t.Errorf("Expected escape test to use |r|")
	}
}
