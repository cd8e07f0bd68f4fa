package disk

import (
	"math"
	"testing"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// flatBlackbody returns the same color for every lookup
type flatBlackbody struct{}

func (flatBlackbody) Lookup(shift, temperature float64) core.Vec3 {
	return core.NewVec3(1, 1, 1)
}

const testRs = 0.5

// denseParams gives material everywhere along the march
func denseParams() Params {
	p := DefaultParams()
	p.NoiseCutoff = -10
	p.Thickness = 0
	return p
}

func TestISCO(t *testing.T) {
	tests := []struct {
		name     string
		spin     float64
		expected float64
	}{
		{"non-rotating", 0, 3 * testRs},
		{"maximal prograde", 1, testRs / 2},
		{"maximal retrograde", -1, 4.5 * testRs},
		{"clamped", 2, testRs / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ISCO(testRs, tt.spin); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ISCO(%f) = %f, expected %f", tt.spin, got, tt.expected)
			}
		})
	}

	if ISCO(testRs, 0.5) >= ISCO(testRs, 0) {
		t.Errorf("Expected prograde spin to shrink the ISCO")
	}
}

func TestReferenceRadius(t *testing.T) {
	p := DefaultParams()
	if got := p.ReferenceRadius(testRs, 0.9); got != p.StableRadius*testRs {
		t.Errorf("Expected fixed stable radius, got %f", got)
	}
	p.SpinAware = true
	if got := p.ReferenceRadius(testRs, 0.9); got != ISCO(testRs, 0.9) {
		t.Errorf("Expected ISCO when spin aware, got %f", got)
	}
}

func TestShadeZeroNoiseMultiplier(t *testing.T) {
	p := DefaultParams()
	p.NoiseMultiplier = 0
	s := NewShader(p, testRs, 0, flatBlackbody{})

	for _, r := range []float64{1, 2, 3, 5} {
		for _, phi := range []float64{0, 1, 2.5, -2} {
			got := s.Shade(Sample{R: r, Phi: phi, Direction: core.NewVec3(0.3, -1, 0.2), Time: 1.7})
			if got != (core.Vec4{}) {
				t.Fatalf("Expected zero contribution at r=%f phi=%f, got %v", r, phi, got)
			}
		}
	}
}

func TestShadeOutsideBounds(t *testing.T) {
	s := NewShader(denseParams(), testRs, 0, flatBlackbody{})
	inner, outer := s.Bounds()

	for _, r := range []float64{inner * 0.9, outer * 1.1} {
		if got := s.Shade(Sample{R: r, Direction: core.NewVec3(0, -1, 0)}); got != (core.Vec4{}) {
			t.Errorf("Expected no contribution at r=%f, got %v", r, got)
		}
	}
}

func TestShadeDenseDisk(t *testing.T) {
	s := NewShader(denseParams(), testRs, 0, flatBlackbody{})

	got := s.Shade(Sample{R: 2, Phi: 0.4, Direction: core.NewVec3(0.2, -1, 0.1)})
	if got.X <= 0 || got.Y <= 0 || got.Z <= 0 {
		t.Errorf("Expected positive color, got %v", got.Vec3)
	}
	if got.A <= 0 || got.A > 1 {
		t.Errorf("Expected alpha in (0, 1], got %f", got.A)
	}
}

func TestShadeDopplerBeaming(t *testing.T) {
	s := NewShader(denseParams(), testRs, 0, flatBlackbody{})

	// At φ = 0 material moves along +z, so a photon travelling along -z comes from approaching gas
	approaching := s.Shade(Sample{R: 2, Phi: 0, Direction: core.NewVec3(0, 0, -1)})
	receding := s.Shade(Sample{R: 2, Phi: 0, Direction: core.NewVec3(0, 0, 1)})

	if approaching.Luminance() <= 2*receding.Luminance() {
		t.Errorf("Expected approaching side to be much brighter: %f vs %f",
			approaching.Luminance(), receding.Luminance())
	}
}

func TestShift(t *testing.T) {
	p := DefaultParams()
	s := NewShader(p, testRs, 0, flatBlackbody{})
	const r = 2.0

	doppler, total := s.Shift(r, 0, core.NewVec3(0, 0, -1))
	if doppler <= 1 {
		t.Errorf("Expected blueshift from approaching gas, got %f", doppler)
	}
	if expected := doppler * math.Sqrt(1-testRs/r); math.Abs(total-expected) > 1e-12 {
		t.Errorf("Expected total shift %f, got %f", expected, total)
	}

	doppler, _ = s.Shift(r, 0, core.NewVec3(0, 0, 1))
	if doppler >= 1 {
		t.Errorf("Expected redshift from receding gas, got %f", doppler)
	}

	// Transverse motion only shows time dilation
	doppler, total = s.Shift(r, 0, core.NewVec3(0, -1, 0))
	if doppler >= 1 || total >= doppler {
		t.Errorf("Expected transverse redshift, got doppler=%f total=%f", doppler, total)
	}

	p.RotationSpeed = -p.RotationSpeed
	reversed := NewShader(p, testRs, 0, flatBlackbody{})
	doppler, _ = reversed.Shift(r, 0, core.NewVec3(0, 0, -1))
	if doppler >= 1 {
		t.Errorf("Expected reversed rotation to recede, got %f", doppler)
	}
}

func TestPowerLawTemperature(t *testing.T) {
	p := DefaultParams()
	s := NewShader(p, testRs, 0, flatBlackbody{})
	ref := p.StableRadius * testRs

	if got := s.Temperature(ref * 0.8); got != p.PeakTemperature {
		t.Errorf("Expected peak temperature inside reference radius, got %f", got)
	}
	expected := p.PeakTemperature * math.Pow(2, -p.TemperatureExponent)
	if got := s.Temperature(2 * ref); math.Abs(got-expected) > 1e-9 {
		t.Errorf("Expected %f at twice the reference radius, got %f", expected, got)
	}
}

func TestViscousTemperature(t *testing.T) {
	p := DefaultParams()
	p.Profile = Viscous
	s := NewShader(p, testRs, 0, flatBlackbody{})
	ref := p.StableRadius * testRs

	if got := s.Temperature(ref); got != 0 {
		t.Errorf("Expected zero temperature at the inner edge, got %f", got)
	}

	peak := s.Temperature(ref * 49 / 36)
	if math.Abs(peak-p.PeakTemperature) > 1e-6 {
		t.Errorf("Expected maximum %f, got %f", p.PeakTemperature, peak)
	}

	for x := 1.01; x < 10; x += 0.05 {
		if got := s.Temperature(ref * x); got > peak+1e-6 {
			t.Fatalf("Temperature %f at x=%f exceeds peak %f", got, x, peak)
		}
	}
}

func TestRadialFalloff(t *testing.T) {
	p := DefaultParams()
	s := NewShader(p, testRs, 0, flatBlackbody{})
	ref := p.StableRadius * testRs
	falloff := p.FalloffRadius * testRs

	tests := []struct {
		name     string
		r        float64
		expected float64
	}{
		{"inside stable radius", ref - testRs, math.Exp(-p.InnerFalloffRate)},
		{"at stable radius", ref, 1},
		{"between", (ref + falloff) / 2, 1},
		{"beyond falloff", 2 * falloff, math.Pow(0.5, p.OuterFalloffExponent)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.RadialFalloff(tt.r); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("RadialFalloff(%f) = %f, expected %f", tt.r, got, tt.expected)
			}
		})
	}
}

func TestMarchRespectsThickness(t *testing.T) {
	p := denseParams()
	p.Thickness = 0.05
	s := NewShader(p, testRs, 0, flatBlackbody{})

	inPlane, _ := s.March(core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 1))
	above, _ := s.March(core.NewVec3(2, 1, 0), core.NewVec3(0, 0, 1))
	if above >= inPlane*1e-6 {
		t.Errorf("Expected density to vanish above the slab: in-plane %f, above %f", inPlane, above)
	}
}
