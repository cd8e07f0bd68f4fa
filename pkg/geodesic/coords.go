package geodesic

import (
	"math"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// Position is a point in Boyer-Lindquist style spherical coordinates plus the
// coordinate time accumulated along the ray. The polar axis is world +Y, so the
// accretion disk lies in the plane Theta = π/2.
type Position struct {
	R, Theta, Phi float64
	T             float64
}

// Momentum holds the covariant (lowered-index) spatial momentum of a photon.
type Momentum struct {
	R, Theta, Phi float64
}

// Velocity holds contravariant coordinate rates (dr, dθ, dφ).
type Velocity struct {
	R, Theta, Phi float64
}

// step returns x + d*h. T is advanced too so that d can carry dt/dλ.
func (x Position) step(d Position, h float64) Position {
	return Position{
		R:     x.R + d.R*h,
		Theta: x.Theta + d.Theta*h,
		Phi:   x.Phi + d.Phi*h,
		T:     x.T + d.T*h,
	}
}

func (p Momentum) step(d Momentum, h float64) Momentum {
	return Momentum{
		R:     p.R + d.R*h,
		Theta: p.Theta + d.Theta*h,
		Phi:   p.Phi + d.Phi*h,
	}
}

// CartesianToSpherical converts a position relative to the black hole into
// spherical coordinates with time zero.
func CartesianToSpherical(p core.Vec3) Position {
	r := p.Length()
	if r == 0 {
		return Position{}
	}
	cosTheta := max(-1.0, min(1.0, p.Y/r))
	return Position{
		R:     r,
		Theta: math.Acos(cosTheta),
		Phi:   math.Atan2(p.Z, p.X),
	}
}

// SphericalToCartesian is the inverse of CartesianToSpherical.
func SphericalToCartesian(x Position) core.Vec3 {
	sinTheta, cosTheta := math.Sincos(x.Theta)
	sinPhi, cosPhi := math.Sincos(x.Phi)
	return core.Vec3{
		X: x.R * sinTheta * cosPhi,
		Y: x.R * cosTheta,
		Z: x.R * sinTheta * sinPhi,
	}
}

// basis returns the orthonormal spherical basis vectors at x in world space.
func basis(x Position) (rHat, thetaHat, phiHat core.Vec3) {
	sinTheta, cosTheta := math.Sincos(x.Theta)
	sinPhi, cosPhi := math.Sincos(x.Phi)
	rHat = core.Vec3{X: sinTheta * cosPhi, Y: cosTheta, Z: sinTheta * sinPhi}
	thetaHat = core.Vec3{X: cosTheta * cosPhi, Y: -sinTheta, Z: cosTheta * sinPhi}
	phiHat = core.Vec3{X: -sinPhi, Y: 0, Z: cosPhi}
	return rHat, thetaHat, phiHat
}

// DirectionToSpherical projects a Cartesian direction d at point p onto
// coordinate rates: d = ṙ r̂ + r θ̇ θ̂ + r sinθ φ̇ φ̂.
func DirectionToSpherical(p, d core.Vec3) Velocity {
	x := CartesianToSpherical(p)
	rHat, thetaHat, phiHat := basis(x)
	r := safeRadius(x.R)
	return Velocity{
		R:     d.Dot(rHat),
		Theta: d.Dot(thetaHat) / r,
		Phi:   d.Dot(phiHat) / (r * safeSin(math.Sin(x.Theta))),
	}
}

// VelocityToCartesian is the exact inverse of DirectionToSpherical.
func VelocityToCartesian(x Position, v Velocity) core.Vec3 {
	rHat, thetaHat, phiHat := basis(x)
	return rHat.Multiply(v.R).
		Add(thetaHat.Multiply(x.R * v.Theta)).
		Add(phiHat.Multiply(x.R * math.Sin(x.Theta) * v.Phi))
}

// LowerVelocity converts coordinate rates into covariant momentum:
// p_r = (1 - rs/r)·ṙ, p_θ = r²·θ̇, p_φ = r² sin²θ·φ̇.
// The azimuthal factor is g_φφ, the same factor both metrics divide by when
// raising p_φ, so angular momentum round-trips without loss.
func LowerVelocity(x Position, v Velocity, rs float64) Momentum {
	r := safeRadius(x.R)
	sinTheta := math.Sin(x.Theta)
	return Momentum{
		R:     (1 - rs/r) * v.R,
		Theta: r * r * v.Theta,
		Phi:   r * r * sinTheta * sinTheta * v.Phi,
	}
}

// RaiseMomentum is the exact inverse of LowerVelocity.
func RaiseMomentum(x Position, p Momentum, rs float64) Velocity {
	r := safeRadius(x.R)
	sinTheta := safeSin(math.Sin(x.Theta))
	return Velocity{
		R:     p.R / (1 - rs/r),
		Theta: p.Theta / (r * r),
		Phi:   p.Phi / (r * r * sinTheta * sinTheta),
	}
}

// SeedRay builds the initial state of a ray leaving origin along direction,
// both relative to the black hole at the world origin.
func SeedRay(origin, direction core.Vec3, rs float64) (Position, Momentum) {
	x := CartesianToSpherical(origin)
	v := DirectionToSpherical(origin, direction.Normalize())
	return x, LowerVelocity(x, v, rs)
}

// Direction returns the world-space unit direction of travel of the ray,
// taken from the metric's position derivative.
func Direction(f Field, x Position, p Momentum) core.Vec3 {
	dx, _ := f.Derivative(x, p)
	return VelocityToCartesian(x, Velocity{R: dx.R, Theta: dx.Theta, Phi: dx.Phi}).Normalize()
}

const (
	minRadius = 1e-9
	minSin    = 1e-9
)

func safeRadius(r float64) float64 {
	if math.Abs(r) < minRadius {
		return math.Copysign(minRadius, r)
	}
	return r
}

func safeSin(s float64) float64 {
	if math.Abs(s) < minSin {
		return math.Copysign(minSin, s)
	}
	return s
}
