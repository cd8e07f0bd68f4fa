package geodesic

import "math"

// StepConfig controls the adaptive step size policy
type StepConfig struct {
	TimeStep   float64 `json:"timeStep"`   // Base affine step near the horizon
	PoleStep   float64 `json:"poleStep"`   // Fixed step near either pole
	PoleMargin float64 `json:"poleMargin"` // Fraction of π around each pole treated as "near"
}

// DefaultStepConfig returns the tuned step policy
func DefaultStepConfig() StepConfig {
	return StepConfig{
		TimeStep:   0.05,
		PoleStep:   0.001,
		PoleMargin: 0.01,
	}
}

// RK4Step advances (x, p) by one classic fourth-order Runge-Kutta step of size h.
func RK4Step(f Field, x Position, p Momentum, h float64) (Position, Momentum) {
	dx1, dp1 := f.Derivative(x, p)
	dx2, dp2 := f.Derivative(x.step(dx1, h/2), p.step(dp1, h/2))
	dx3, dp3 := f.Derivative(x.step(dx2, h/2), p.step(dp2, h/2))
	dx4, dp4 := f.Derivative(x.step(dx3, h), p.step(dp3, h))

	w := h / 6
	nx := Position{
		R:     x.R + w*(dx1.R+2*dx2.R+2*dx3.R+dx4.R),
		Theta: x.Theta + w*(dx1.Theta+2*dx2.Theta+2*dx3.Theta+dx4.Theta),
		Phi:   x.Phi + w*(dx1.Phi+2*dx2.Phi+2*dx3.Phi+dx4.Phi),
		T:     x.T + w*(dx1.T+2*dx2.T+2*dx3.T+dx4.T),
	}
	np := Momentum{
		R:     p.R + w*(dp1.R+2*dp2.R+2*dp3.R+dp4.R),
		Theta: p.Theta + w*(dp1.Theta+2*dp2.Theta+2*dp3.Theta+dp4.Theta),
		Phi:   p.Phi + w*(dp1.Phi+2*dp2.Phi+2*dp3.Phi+dp4.Phi),
	}
	return nx, np
}

// NearPole reports whether theta lies within margin·π of either pole.
// Theta is folded into [0, π) first so wrapped angles are handled.
func NearPole(theta, margin float64) bool {
	folded := math.Mod(theta, math.Pi)
	if folded < 0 {
		folded += math.Pi
	}
	band := margin * math.Pi
	return folded < band || folded > math.Pi-band
}

// CalculateStepSize picks the affine step for the next RK4 step.
// Order matters: the pole test wins over the horizon test, which wins over
// the far-field scaling.
func CalculateStepSize(x Position, p Momentum, rs float64, config StepConfig) float64 {
	if NearPole(x.Theta, config.PoleMargin) {
		return config.PoleStep
	}

	r := math.Abs(x.R)
	if r < 2*rs {
		return config.TimeStep
	}

	// Receding rays may take much larger steps
	if p.R*x.R > 0 {
		return max(config.TimeStep*r*r, config.TimeStep)
	}
	return max(config.TimeStep*(r-2*rs), config.TimeStep)
}
