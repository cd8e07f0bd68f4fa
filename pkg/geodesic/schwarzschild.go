package geodesic

import "math"

// Schwarzschild is the metric of a non-spinning black hole with horizon radius Rs.
type Schwarzschild struct {
	Rs float64
}

// HorizonRadius returns r_s
func (s Schwarzschild) HorizonRadius() float64 {
	return s.Rs
}

// timeRate returns u0 = dt/dλ from the null condition, together with A = 1 - rs/r.
// The spatial momentum fixes the energy: u0² = (A p_r² + p_θ²/r² + p_φ²/(r² sin²θ)) / A.
func (s Schwarzschild) timeRate(r, sin2 float64, p Momentum) (u0, a float64) {
	a = max(1-s.Rs/r, minRadius)
	r2 := r * r
	norm := a*p.R*p.R + p.Theta*p.Theta/r2 + p.Phi*p.Phi/(r2*sin2)
	return math.Sqrt(max(norm, 0) / a), a
}

// Derivative implements Field for Schwarzschild geodesics.
func (s Schwarzschild) Derivative(x Position, p Momentum) (Position, Momentum) {
	r := safeRadius(x.R)
	sinTheta, cosTheta := math.Sincos(x.Theta)
	sinTheta = safeSin(sinTheta)
	sin2 := sinTheta * sinTheta
	r2 := r * r
	r3 := r2 * r

	u0, a := s.timeRate(r, sin2, p)
	energy := a * u0

	dx := Position{
		R:     a * p.R,
		Theta: p.Theta / r2,
		Phi:   p.Phi / (r2 * sin2),
		T:     u0,
	}

	dp := Momentum{
		R: -s.Rs/(2*r2)*(energy*energy/(a*a)+p.R*p.R) +
			(p.Theta*p.Theta+p.Phi*p.Phi/sin2)/r3,
		Theta: p.Phi * p.Phi * cosTheta / (r2 * sin2 * sinTheta),
		Phi:   0,
	}

	return dx, dp
}

// Energy returns E = A·u0
func (s Schwarzschild) Energy(x Position, p Momentum) float64 {
	r := safeRadius(x.R)
	sinTheta := safeSin(math.Sin(x.Theta))
	u0, a := s.timeRate(r, sinTheta*sinTheta, p)
	return a * u0
}

// ImpactParameter returns (p_θ² + p_φ²/sin²θ) / E²
func (s Schwarzschild) ImpactParameter(x Position, p Momentum) float64 {
	sinTheta := safeSin(math.Sin(x.Theta))
	energy := s.Energy(x, p)
	if energy == 0 {
		return math.Inf(1)
	}
	l2 := p.Theta*p.Theta + p.Phi*p.Phi/(sinTheta*sinTheta)
	return l2 / (energy * energy)
}
