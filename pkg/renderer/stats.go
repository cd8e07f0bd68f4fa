package renderer

import (
	"image"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// PassStats counts what one pass did to a set of pixels
type PassStats struct {
	Pixels    int // Pixels visited, including already complete ones
	Steps     int // RK4 steps taken
	Crossings int // Disk crossings shaded
	Captured  int // Rays that fell in during this pass
	Escaped   int // Rays that reached the skybox during this pass
}

// Add folds the result of marching one pixel into the stats
func (ps *PassStats) Add(result MarchResult, ray *RayState) {
	ps.Pixels++
	ps.Steps += result.Steps
	ps.Crossings += result.Crossings
	if result.Completed {
		switch ray.Outcome {
		case Captured:
			ps.Captured++
		case Escaped:
			ps.Escaped++
		}
	}
}

// Merge adds other into ps
func (ps *PassStats) Merge(other PassStats) {
	ps.Pixels += other.Pixels
	ps.Steps += other.Steps
	ps.Crossings += other.Crossings
	ps.Captured += other.Captured
	ps.Escaped += other.Escaped
}

// Completed returns the number of rays that terminated
func (ps PassStats) Completed() int {
	return ps.Captured + ps.Escaped
}

// RenderStats contains statistics about a frame so far
type RenderStats struct {
	TotalPixels   int // Pixels in the oversampled buffer
	Passes        int // Marching passes run
	Scans         int // Completeness scans run
	HardCheckPass int // Pass at which hard checks were enabled, 0 if never
	Totals        PassStats
	Unresolved    int  // Rays still running when the frame completed
	TimedOut      bool // The frame completed by hitting the pass limit
}

// CompletedPixels returns the number of terminated rays
func (rs RenderStats) CompletedPixels() int {
	return rs.Totals.Completed()
}

// Progress returns the fraction of terminated rays in [0, 1]
func (rs RenderStats) Progress() float64 {
	if rs.TotalPixels == 0 {
		return 1
	}
	return float64(rs.CompletedPixels()) / float64(rs.TotalPixels)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image,
// with channels normalized to [0, 1].
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := core.NewVec3(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff)
			total += c.Luminance()
		}
	}
	return total / float64(pixels)
}
