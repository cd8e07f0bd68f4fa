package noise

// DitherTexture is a precomputed, tileable field of FBM noise used to break up
// banding when float colors are quantized to 8 bits.
type DitherTexture struct {
	Width  int
	Height int
	Values []float64 // Row-major, normalized to [0, 1)
}

// NewDitherTexture fills a width x height texture with FBM noise sampled at
// the given lattice scale.
func NewDitherTexture(width, height int, scale, h float64, octaves int) *DitherTexture {
	values := make([]float64, width*height)
	norm := AmplitudeSum(h, octaves)
	if norm == 0 {
		norm = 1
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := SampleFBM2(float64(x)*scale, float64(y)*scale, h, octaves) / norm
			values[y*width+x] = min(max(v, 0), 0.999999)
		}
	}

	return &DitherTexture{
		Width:  width,
		Height: height,
		Values: values,
	}
}

// At returns the value at (x, y), wrapping around the texture edges.
func (d *DitherTexture) At(x, y int) float64 {
	if d == nil || d.Width == 0 || d.Height == 0 {
		return 0.5
	}
	x %= d.Width
	if x < 0 {
		x += d.Width
	}
	y %= d.Height
	if y < 0 {
		y += d.Height
	}
	return d.Values[y*d.Width+x]
}

// Offset returns the value at (x, y) re-centered to [-0.5, 0.5).
func (d *DitherTexture) Offset(x, y int) float64 {
	return d.At(x, y) - 0.5
}
