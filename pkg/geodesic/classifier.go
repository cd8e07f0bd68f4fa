package geodesic

import "math"

// ClassifierConfig holds the thresholds used by the per-step predicates
type ClassifierConfig struct {
	EscapeDistance   float64 `json:"escapeDistance"`   // Escape radius in units of r_s
	PoleMargin       float64 `json:"poleMargin"`       // Same meaning as StepConfig.PoleMargin
	BoundOrbitMargin float64 `json:"boundOrbitMargin"` // Relative slack on the 27/4·r_s² critical value
}

// DefaultClassifierConfig returns sensible default values
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		EscapeDistance:   1000,
		PoleMargin:       0.01,
		BoundOrbitMargin: 0.01,
	}
}

// PhotonSphereFactor is the photon sphere radius in units of r_s for a non-spinning hole
const PhotonSphereFactor = 1.5

// CriticalImpactFactor is 27/4, the critical C = b² in units of r_s²
const CriticalImpactFactor = 27.0 / 4.0

// Crossing describes where a step crossed the equatorial plane. R is the
// absolute radius and Phi the world-space azimuth atan2(z, x).
type Crossing struct {
	R, Phi, T float64
}

// northern reports the hemisphere of theta. cos θ has the sign of
// π/2 - (θ mod π) inside [0, π] and stays correct for angles wrapped past a pole.
func northern(theta float64) bool {
	return math.Cos(theta) > 0
}

// DiskCheck reports whether the step prev→next crossed the equatorial plane
// at a radius within [inner, outer], and where.
func DiskCheck(prev, next Position, inner, outer float64) (Crossing, bool) {
	if northern(prev.Theta) == northern(next.Theta) {
		return Crossing{}, false
	}

	c0 := math.Cos(prev.Theta)
	c1 := math.Cos(next.Theta)
	frac := 0.0
	if c0 != c1 {
		frac = c0 / (c0 - c1)
	}

	at := Position{
		R:     prev.R + frac*(next.R-prev.R),
		Theta: prev.Theta + frac*(next.Theta-prev.Theta),
		Phi:   prev.Phi + frac*(next.Phi-prev.Phi),
	}
	r := math.Abs(at.R)
	if r < inner || r > outer {
		return Crossing{}, false
	}

	// Rays that passed over a pole (θ outside [0, π]) or through r < 0 sit at
	// the antipodal azimuth, so read φ back from the world-space point.
	world := SphericalToCartesian(at)
	return Crossing{
		R:   r,
		Phi: math.Atan2(world.Z, world.X),
		T:   prev.T + frac*(next.T-prev.T),
	}, true
}

// HorizonCheck reports whether the ray is captured. Inside the photon sphere
// capture is unconditional. With hardCheck set, rays stuck at a pole close to
// the hole and rays on a bound orbit that are not receding count as captured too.
func HorizonCheck(m Metric, x Position, p Momentum, hardCheck bool, config ClassifierConfig) bool {
	rs := m.HorizonRadius()
	r := math.Abs(x.R)
	if r < PhotonSphereFactor*rs {
		return true
	}
	if !hardCheck {
		return false
	}

	if NearPole(x.Theta, config.PoleMargin) && r < 2*PhotonSphereFactor*rs {
		return true
	}

	critical := CriticalImpactFactor * rs * rs * (1 + config.BoundOrbitMargin)
	receding := p.R*x.R > 0
	return !receding && m.ImpactParameter(x, p) < critical
}

// EscapeCheck reports whether the ray is far enough away to sample the skybox
func EscapeCheck(x Position, rs, escapeDistance float64) bool {
	return math.Abs(x.R) > escapeDistance*rs
}
