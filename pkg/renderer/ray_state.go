package renderer

import (
	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/geodesic"
)

// Outcome records how a ray terminated
type Outcome int

const (
	Pending Outcome = iota
	Captured
	Escaped
)

func (o Outcome) String() string {
	switch o {
	case Captured:
		return "captured"
	case Escaped:
		return "escaped"
	default:
		return "pending"
	}
}

// RayState is the per-pixel state carried between passes
type RayState struct {
	Position  geodesic.Position
	Momentum  geodesic.Momentum
	Color     core.Vec4 // Additive accumulation of disk and terminal contributions
	Complete  bool
	Outcome   Outcome
	Crossings int
}

// RayBuffer holds the state of every pixel of the (oversampled) image,
// row-major with row 0 at the top.
type RayBuffer struct {
	Width  int
	Height int
	Rays   []RayState
}

// NewRayBuffer allocates a buffer for width x height pixels
func NewRayBuffer(width, height int) *RayBuffer {
	return &RayBuffer{
		Width:  width,
		Height: height,
		Rays:   make([]RayState, width*height),
	}
}

// At returns the state of pixel (x, y)
func (b *RayBuffer) At(x, y int) *RayState {
	return &b.Rays[y*b.Width+x]
}

// Seed resets every pixel to a fresh ray leaving the camera
func (b *RayBuffer) Seed(camera *Camera, rs float64) {
	origin := camera.Origin()
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			position, momentum := geodesic.SeedRay(origin, camera.GetRay(x, y), rs)
			b.Rays[y*b.Width+x] = RayState{
				Position: position,
				Momentum: momentum,
			}
		}
	}
}

// Colors returns a copy of the accumulated colors
func (b *RayBuffer) Colors() []core.Vec4 {
	colors := make([]core.Vec4, len(b.Rays))
	for i := range b.Rays {
		colors[i] = b.Rays[i].Color
	}
	return colors
}

// CountIncomplete returns the number of rays that have not terminated
func (b *RayBuffer) CountIncomplete() int {
	count := 0
	for i := range b.Rays {
		if !b.Rays[i].Complete {
			count++
		}
	}
	return count
}
