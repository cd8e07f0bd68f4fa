// Package noise provides deterministic lattice value noise and fractional
// Brownian motion built on top of it. Every function here is pure: identical
// input always yields bit-identical output.
package noise

import (
	"math"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// hash maps an integer lattice coordinate to a value in [0, 1).
func hash(x, y, z int64) float64 {
	h := uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xC2B2AE3D27D4EB4F ^ uint64(z)*0x165667B19E3779F9
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	h *= 0xC4CEB9FE1A85EC53
	h ^= h >> 33
	return float64(h>>11) / (1 << 53)
}

// smooth is the cubic Hermite weight 3u² - 2u³
func smooth(u float64) float64 {
	return u * u * (3 - 2*u)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Noise2 returns smoothly interpolated value noise in [0, 1) at (x, y).
func Noise2(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	ix, iy := int64(fx), int64(fy)
	u, v := smooth(x-fx), smooth(y-fy)

	c00 := hash(ix, iy, 0)
	c10 := hash(ix+1, iy, 0)
	c01 := hash(ix, iy+1, 0)
	c11 := hash(ix+1, iy+1, 0)

	return lerp(lerp(c00, c10, u), lerp(c01, c11, u), v)
}

// Noise3 returns smoothly interpolated value noise in [0, 1) at p.
func Noise3(p core.Vec3) float64 {
	fx, fy, fz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	ix, iy, iz := int64(fx), int64(fy), int64(fz)
	u, v, w := smooth(p.X-fx), smooth(p.Y-fy), smooth(p.Z-fz)

	c000 := hash(ix, iy, iz)
	c100 := hash(ix+1, iy, iz)
	c010 := hash(ix, iy+1, iz)
	c110 := hash(ix+1, iy+1, iz)
	c001 := hash(ix, iy, iz+1)
	c101 := hash(ix+1, iy, iz+1)
	c011 := hash(ix, iy+1, iz+1)
	c111 := hash(ix+1, iy+1, iz+1)

	front := lerp(lerp(c000, c100, u), lerp(c010, c110, u), v)
	back := lerp(lerp(c001, c101, u), lerp(c011, c111, u), v)
	return lerp(front, back, w)
}

// SampleFBM sums octaves of Noise3: Σ_{i<octaves} 2^(-iH)·Noise3(2^i·p).
// Larger H gives smoother fields, more octaves add finer detail.
func SampleFBM(p core.Vec3, h float64, octaves int) float64 {
	gain := math.Exp2(-h)
	frequency := 1.0
	amplitude := 1.0
	total := 0.0
	for i := 0; i < octaves; i++ {
		total += amplitude * Noise3(p.Multiply(frequency))
		frequency *= 2
		amplitude *= gain
	}
	return total
}

// SampleFBM2 is the two dimensional counterpart of SampleFBM.
func SampleFBM2(x, y, h float64, octaves int) float64 {
	gain := math.Exp2(-h)
	frequency := 1.0
	amplitude := 1.0
	total := 0.0
	for i := 0; i < octaves; i++ {
		total += amplitude * Noise2(x*frequency, y*frequency)
		frequency *= 2
		amplitude *= gain
	}
	return total
}

// AmplitudeSum returns Σ_{i<octaves} 2^(-iH), the upper bound of SampleFBM.
func AmplitudeSum(h float64, octaves int) float64 {
	gain := math.Exp2(-h)
	amplitude := 1.0
	total := 0.0
	for i := 0; i < octaves; i++ {
		total += amplitude
		amplitude *= gain
	}
	return total
}
