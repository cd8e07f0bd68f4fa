package disk

import (
	"math"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/noise"
)

// maxOrbitalVelocity keeps the Lorentz factor finite near the photon sphere
const maxOrbitalVelocity = 0.99

// minTransmittance ends a march once the segment is effectively opaque
const minTransmittance = 1e-4

// Sample is one equatorial crossing to be shaded
type Sample struct {
	R, Phi    float64   // Crossing radius and azimuth
	Direction core.Vec3 // World-space direction of the traced ray, from the observer into the scene
	Time      float64   // Coordinate time used to animate the disk
}

// Shader turns disk crossings into color contributions. It holds no mutable
// state and is safe to share between workers.
type Shader struct {
	params    Params
	rs        float64
	blackbody core.Blackbody

	inner, outer float64
	reference    float64
	falloff      float64
	viscousNorm  float64
}

// NewShader prepares a shader for a hole of horizon radius rs and the given spin
func NewShader(params Params, rs, spin float64, blackbody core.Blackbody) *Shader {
	inner, outer := params.Bounds(rs)
	return &Shader{
		params:      params,
		rs:          rs,
		blackbody:   blackbody,
		inner:       inner,
		outer:       outer,
		reference:   params.ReferenceRadius(rs, spin),
		falloff:     params.FalloffRadius * rs,
		viscousNorm: viscousShape(49.0 / 36.0),
	}
}

// Params returns the disk parameters the shader was built with
func (s *Shader) Params() Params {
	return s.params
}

// Bounds returns the absolute crossing window
func (s *Shader) Bounds() (inner, outer float64) {
	return s.inner, s.outer
}

// Shade returns the additive RGBA contribution of one crossing.
func (s *Shader) Shade(in Sample) core.Vec4 {
	r := math.Abs(in.R)
	if r < s.inner || r > s.outer {
		return core.Vec4{}
	}

	// Move into the frame co-rotating with the disk material. RotateY lowers φ.
	rNorm := (r - s.inner) / (s.outer - s.inner)
	twist := s.params.RotationSpeed*in.Time + s.params.NoiseCirculation*rNorm
	sinPhi, cosPhi := math.Sincos(in.Phi)
	crossing := core.NewVec3(r*cosPhi, 0, r*sinPhi)
	direction := in.Direction.Normalize()

	contribution, depth := s.March(crossing.RotateY(twist), direction.RotateY(twist))
	if contribution <= 0 {
		return core.Vec4{}
	}

	temperature := s.Temperature(r)
	if temperature <= 0 {
		return core.Vec4{}
	}

	brightness := contribution * s.RadialFalloff(r)
	doppler, shift := s.Shift(r, in.Phi, direction)
	brightness *= math.Pow(math.Abs(doppler), s.params.BeamExponent)

	color := s.blackbody.Lookup(
		normalize(shift, s.params.ShiftMin, s.params.ShiftMax),
		normalize(temperature, s.params.TemperatureMin, s.params.TemperatureMax),
	)

	ratio := temperature / s.params.PeakTemperature
	scale := brightness * ratio * ratio * ratio * ratio * s.params.Brightness
	alpha := 1 - math.Exp(-s.params.AbsorptionFactor*depth*s.params.MarchStep)

	return core.Vec4{Vec3: color.Multiply(scale), A: alpha}
}

// Density returns the local turbulent density at a comoving point. Values at
// or below zero mean "no material".
func (s *Shader) Density(p core.Vec3) float64 {
	q := p.Multiply(s.params.NoiseScale).Add(s.params.NoiseOffset)
	density := s.params.NoiseMultiplier * (noise.SampleFBM(q, s.params.NoiseH, s.params.NoiseOctaves) - s.params.NoiseCutoff)
	if s.params.Thickness > 0 {
		h := p.Y / s.params.Thickness
		density *= math.Exp(-h * h)
	}
	return density
}

// March integrates density along a short segment centered on center, with
// discrete Beer-Lambert absorption. It returns the accumulated brightness and
// the summed positive density.
func (s *Shader) March(center, direction core.Vec3) (contribution, depth float64) {
	step := s.params.MarchStep
	steps := s.params.MarchSteps
	if step <= 0 || steps <= 0 {
		return 0, 0
	}

	start := center.Subtract(direction.Multiply(step * float64(steps) / 2))
	for i := 0; i < steps; i++ {
		p := start.Add(direction.Multiply(step * (float64(i) + 0.5)))
		density := s.Density(p)
		if density <= 0 {
			continue
		}

		depth += density
		transmittance := math.Exp(-s.params.AbsorptionFactor * depth * step)
		contribution += s.params.DiskMultiplier * density * step * transmittance
		if transmittance < minTransmittance {
			break
		}
	}
	return contribution, depth
}

// RadialFalloff returns the brightness envelope at radius r: exponential decay
// inside the reference radius, power-law decay beyond the falloff radius.
func (s *Shader) RadialFalloff(r float64) float64 {
	switch {
	case r < s.reference:
		return math.Exp(-s.params.InnerFalloffRate * (s.reference - r) / s.rs)
	case r > s.falloff && s.params.OuterFalloffExponent != 0:
		return math.Pow(s.falloff/r, s.params.OuterFalloffExponent)
	default:
		return 1
	}
}

// Temperature returns the local disk temperature in Kelvin at radius r
func (s *Shader) Temperature(r float64) float64 {
	switch s.params.Profile {
	case Viscous:
		x := r / s.reference
		if x <= 1 {
			return 0
		}
		return s.params.PeakTemperature * math.Pow(viscousShape(x)/s.viscousNorm, 0.25)
	default:
		if r <= s.reference {
			return s.params.PeakTemperature
		}
		return s.params.PeakTemperature * math.Pow(r/s.reference, -s.params.TemperatureExponent)
	}
}

// Shift returns the special relativistic Doppler factor of Keplerian disk
// material at (r, φ) seen along a traced ray heading in direction, and the
// total shift once gravitational redshift is applied.
func (s *Shader) Shift(r, phi float64, direction core.Vec3) (doppler, total float64) {
	v := min(math.Sqrt(s.rs/(2*r)), maxOrbitalVelocity)
	gamma := 1 / math.Sqrt(1-v*v)

	sinPhi, cosPhi := math.Sincos(phi)
	orbit := core.NewVec3(-sinPhi, 0, cosPhi)
	if s.params.RotationSpeed < 0 {
		orbit = orbit.Negate()
	}

	// Angle between the material's motion and the direction back towards the observer
	cosAlpha := orbit.Dot(direction.Normalize().Negate())
	doppler = 1 / (gamma * (1 - v*cosAlpha))

	redshift := math.Sqrt(max(1-s.rs/r, 0))
	return doppler, doppler * redshift
}

// viscousShape is x⁻³(1 - x^(-1/2)), maximal at x = 49/36
func viscousShape(x float64) float64 {
	return (1 - 1/math.Sqrt(x)) / (x * x * x)
}

func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return max(0, min(1, (v-lo)/(hi-lo)))
}
