package disk

import (
	"math"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// TemperatureProfile selects how disk temperature falls off with radius
type TemperatureProfile string

const (
	// PowerLaw uses T = Tpeak·(r/rRef)^(-TemperatureExponent)
	PowerLaw TemperatureProfile = "power"
	// Viscous uses the thin-disk profile T⁴ ∝ r⁻³(1 - √(rRef/r)), normalized so its maximum is Tpeak
	Viscous TemperatureProfile = "viscous"
)

// Params describes the accretion disk. Radii are in units of the horizon radius r_s.
type Params struct {
	InnerRadius   float64 `json:"innerRadius"`   // Crossings closer than this are ignored
	StableRadius  float64 `json:"stableRadius"`  // Inner stable orbit, start of the exponential inner falloff
	FalloffRadius float64 `json:"falloffRadius"` // Start of the power-law outer falloff
	OuterRadius   float64 `json:"outerRadius"`   // Crossings farther than this are ignored
	SpinAware     bool    `json:"spinAware"`     // Use the ISCO of the spinning hole instead of StableRadius

	PeakTemperature     float64            `json:"peakTemperature"` // Kelvin
	TemperatureExponent float64            `json:"temperatureExponent"`
	Profile             TemperatureProfile `json:"profile"`

	RotationSpeed        float64 `json:"rotationSpeed"`        // Radians per unit of coordinate time
	InnerFalloffRate     float64 `json:"innerFalloffRate"`     // Exponential decay rate inside the stable radius, per r_s
	OuterFalloffExponent float64 `json:"outerFalloffExponent"` // 0 disables the outer falloff
	BeamExponent         float64 `json:"beamExponent"`
	Thickness            float64 `json:"thickness"` // Gaussian half-height of the density slab; 0 disables it

	NoiseOffset      core.Vec3 `json:"noiseOffset"`
	NoiseScale       float64   `json:"noiseScale"`
	NoiseOctaves     int       `json:"noiseOctaves"`
	NoiseH           float64   `json:"noiseH"` // Self-affinity exponent
	NoiseCirculation float64   `json:"noiseCirculation"`
	NoiseCutoff      float64   `json:"noiseCutoff"`
	NoiseMultiplier  float64   `json:"noiseMultiplier"`

	MarchStep        float64 `json:"marchStep"`
	MarchSteps       int     `json:"marchSteps"`
	AbsorptionFactor float64 `json:"absorptionFactor"`
	DiskMultiplier   float64 `json:"diskMultiplier"`
	Brightness       float64 `json:"brightness"`

	// Ranges used to normalize lookups into the blackbody table
	ShiftMin       float64 `json:"shiftMin"`
	ShiftMax       float64 `json:"shiftMax"`
	TemperatureMin float64 `json:"temperatureMin"`
	TemperatureMax float64 `json:"temperatureMax"`
}

// DefaultParams returns a bright, moderately turbulent disk
func DefaultParams() Params {
	return Params{
		InnerRadius:   1.5,
		StableRadius:  3,
		FalloffRadius: 8,
		OuterRadius:   12,

		PeakTemperature:     9000,
		TemperatureExponent: 0.75,
		Profile:             PowerLaw,

		RotationSpeed:        0.4,
		InnerFalloffRate:     3,
		OuterFalloffExponent: 2,
		BeamExponent:         3,
		Thickness:            0.15,

		NoiseOffset:      core.NewVec3(17.3, 4.1, -8.6),
		NoiseScale:       1.6,
		NoiseOctaves:     5,
		NoiseH:           0.7,
		NoiseCirculation: 2.5,
		NoiseCutoff:      1.1,
		NoiseMultiplier:  4,

		MarchStep:        0.02,
		MarchSteps:       24,
		AbsorptionFactor: 1.5,
		DiskMultiplier:   6,
		Brightness:       1,

		ShiftMin:       0.2,
		ShiftMax:       2.0,
		TemperatureMin: 1000,
		TemperatureMax: 20000,
	}
}

// Bounds returns the absolute crossing window [inner, outer] for a hole of radius rs
func (p Params) Bounds(rs float64) (inner, outer float64) {
	return p.InnerRadius * rs, p.OuterRadius * rs
}

// ReferenceRadius returns the absolute radius the temperature profile and the
// inner falloff are measured from.
func (p Params) ReferenceRadius(rs, spin float64) float64 {
	if p.SpinAware {
		return ISCO(rs, spin)
	}
	return p.StableRadius * rs
}

// ISCO returns the innermost stable circular orbit radius for a hole with
// horizon radius rs and dimensionless spin in [-1, 1]. Positive spin is
// prograde with the disk.
func ISCO(rs, spin float64) float64 {
	m := rs / 2
	chi := max(-1.0, min(1.0, spin))
	z1 := 1 + math.Cbrt(1-chi*chi)*(math.Cbrt(1+chi)+math.Cbrt(1-chi))
	z2 := math.Sqrt(3*chi*chi + z1*z1)
	root := math.Sqrt(max((3-z1)*(3+z1+2*z2), 0))
	if chi >= 0 {
		return m * (3 + z2 - root)
	}
	return m * (3 + z2 + root)
}
