package geodesic

// Field is anything that can produce the rate of change of a ray's state.
type Field interface {
	Derivative(x Position, p Momentum) (Position, Momentum)
}

// DerivativeFunc adapts an ordinary function to a Field.
type DerivativeFunc func(x Position, p Momentum) (Position, Momentum)

// Derivative calls f(x, p)
func (f DerivativeFunc) Derivative(x Position, p Momentum) (Position, Momentum) {
	return f(x, p)
}

// Metric is a spacetime in which photons are traced. Derivative returns
// (dx/dλ, dp/dλ) for a null geodesic, where the time component of dx is dt/dλ.
type Metric interface {
	Field

	// HorizonRadius returns the Schwarzschild radius r_s the metric was built with
	HorizonRadius() float64

	// Energy returns the conserved photon energy -p_t
	Energy(x Position, p Momentum) float64

	// ImpactParameter returns the conserved C = L²/E² used by the bound orbit test
	ImpactParameter(x Position, p Momentum) float64
}

// NewMetric returns a Schwarzschild metric when spin is zero and an
// equatorially symmetric Kerr metric otherwise.
func NewMetric(rs, spin float64) Metric {
	if spin == 0 {
		return Schwarzschild{Rs: rs}
	}
	return Kerr{Rs: rs, Spin: max(-1.0, min(1.0, spin))}
}
