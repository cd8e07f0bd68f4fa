package geodesic

import "math"

// Kerr is the Boyer-Lindquist metric of a spinning black hole. Spin is the
// dimensionless spin factor in [-1, 1]; the spin parameter is a = Spin·Rs/2.
// With Spin = 0 it reduces to Schwarzschild.
type Kerr struct {
	Rs   float64
	Spin float64
}

// HorizonRadius returns r_s
func (k Kerr) HorizonRadius() float64 {
	return k.Rs
}

// SpinParameter returns a = Spin·Rs/2
func (k Kerr) SpinParameter() float64 {
	return k.Spin * k.Rs / 2
}

// kerrState holds the metric functions at one point and the photon's
// contravariant t and φ components.
type kerrState struct {
	r, sinTheta, cosTheta float64
	sigma, delta          float64
	gtt, gtp, gpp         float64
	ut, uphi, pt          float64
}

func (k Kerr) evaluate(x Position, p Momentum) kerrState {
	a := k.SpinParameter()
	a2 := a * a
	r := safeRadius(x.R)
	sinTheta, cosTheta := math.Sincos(x.Theta)
	sinTheta = safeSin(sinTheta)
	sin2 := sinTheta * sinTheta
	r2 := r * r

	sigma := r2 + a2*cosTheta*cosTheta
	delta := max(r2-k.Rs*r+a2, minRadius)

	gtt := -(1 - k.Rs*r/sigma)
	gtp := -k.Rs * r * a * sin2 / sigma
	gpp := (r2 + a2 + k.Rs*r*a2*sin2/sigma) * sin2

	// Inverse of the t-φ block
	det := gtt*gpp - gtp*gtp
	if det == 0 {
		det = -minRadius
	}
	itt := gpp / det
	itp := -gtp / det
	ipp := gtt / det

	// Null condition: itt·p_t² + 2·itp·p_φ·p_t + rest = 0, with u^t = itt·p_t + itp·p_φ > 0
	rest := ipp*p.Phi*p.Phi + delta/sigma*p.R*p.R + p.Theta*p.Theta/sigma
	ut := math.Sqrt(max(itp*itp*p.Phi*p.Phi-itt*rest, 0))
	pt := (ut - itp*p.Phi) / itt
	uphi := itp*pt + ipp*p.Phi

	return kerrState{
		r: r, sinTheta: sinTheta, cosTheta: cosTheta,
		sigma: sigma, delta: delta,
		gtt: gtt, gtp: gtp, gpp: gpp,
		ut: ut, uphi: uphi, pt: pt,
	}
}

// Derivative implements Field for Kerr geodesics using Hamilton's equations
// with H = ½ g^{μν} p_μ p_ν. For the t-φ block the identity
// ∂g^{-1} = -g^{-1} (∂g) g^{-1} turns -½ p·∂g^{-1}·p into ½ u·∂g·u.
func (k Kerr) Derivative(x Position, p Momentum) (Position, Momentum) {
	s := k.evaluate(x, p)
	a := k.SpinParameter()
	a2 := a * a
	rs := k.Rs
	r := s.r
	r2 := r * r
	sinT, cosT := s.sinTheta, s.cosTheta
	sin2 := sinT * sinT
	sig := s.sigma
	sig2 := sig * sig

	dSigmaR := 2 * r
	dSigmaTh := -2 * a2 * cosT * sinT
	dDeltaR := 2*r - rs

	// ∂_r and ∂_θ of g_tt, g_tφ, g_φφ
	dgttR := rs * (sig - 2*r2) / sig2
	dgttTh := -rs * r * dSigmaTh / sig2

	dgtpR := -rs * a * sin2 * (sig - 2*r2) / sig2
	dgtpTh := -rs * a * r * (2*sinT*cosT*sig - sin2*dSigmaTh) / sig2

	dgppR := 2*r*sin2 + rs*a2*sin2*sin2*(sig-2*r2)/sig2
	dgppTh := 2*(r2+a2)*sinT*cosT + rs*r*a2*(4*sin2*sinT*cosT*sig-sin2*sin2*dSigmaTh)/sig2

	// ∂ of g^rr = Δ/Σ and g^θθ = 1/Σ
	dgrrR := (dDeltaR*sig - s.delta*dSigmaR) / sig2
	dgrrTh := -s.delta * dSigmaTh / sig2
	dgththR := -dSigmaR / sig2
	dgththTh := -dSigmaTh / sig2

	ut, uphi := s.ut, s.uphi
	blockR := 0.5 * (dgttR*ut*ut + 2*dgtpR*ut*uphi + dgppR*uphi*uphi)
	blockTh := 0.5 * (dgttTh*ut*ut + 2*dgtpTh*ut*uphi + dgppTh*uphi*uphi)

	dx := Position{
		R:     s.delta / sig * p.R,
		Theta: p.Theta / sig,
		Phi:   uphi,
		T:     ut,
	}
	dp := Momentum{
		R:     blockR - 0.5*(dgrrR*p.R*p.R+dgththR*p.Theta*p.Theta),
		Theta: blockTh - 0.5*(dgrrTh*p.R*p.R+dgththTh*p.Theta*p.Theta),
		Phi:   0,
	}
	return dx, dp
}

// Energy returns E = -p_t
func (k Kerr) Energy(x Position, p Momentum) float64 {
	return -k.evaluate(x, p).pt
}

// ImpactParameter returns (Q + L_z²)/E² where Q is the Carter constant,
// which reduces to (p_θ² + p_φ²/sin²θ)/E² when the spin is zero.
func (k Kerr) ImpactParameter(x Position, p Momentum) float64 {
	s := k.evaluate(x, p)
	energy := -s.pt
	if energy == 0 {
		return math.Inf(1)
	}
	a := k.SpinParameter()
	sin2 := s.sinTheta * s.sinTheta
	cos2 := s.cosTheta * s.cosTheta
	total := p.Theta*p.Theta + p.Phi*p.Phi/sin2 - a*a*energy*energy*cos2
	return total / (energy * energy)
}
