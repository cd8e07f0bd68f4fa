package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	_ "golang.org/x/image/webp" // WebP decoder
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// LoadImage loads a PNG, JPEG or WebP image and converts it to Vec3 color array
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decode image (auto-detects the format from the file header)
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	return FromImage(img), nil
}

// FromImage converts a decoded image to Vec3 colors in [0, 1]
func FromImage(img image.Image) *ImageData {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// At returns the pixel at (x, y), clamped to the image edges
func (d *ImageData) At(x, y int) core.Vec3 {
	x = max(0, min(d.Width-1, x))
	y = max(0, min(d.Height-1, y))
	return d.Pixels[y*d.Width+x]
}

// Sample bilinearly interpolates the image at normalized (u, v), with (0, 0)
// the top-left corner and (1, 1) the bottom-right.
func (d *ImageData) Sample(u, v float64) core.Vec3 {
	if d.Width == 0 || d.Height == 0 {
		return core.Vec3{}
	}

	fx := u*float64(d.Width) - 0.5
	fy := v*float64(d.Height) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	top := d.At(ix, iy).Multiply(1 - tx).Add(d.At(ix+1, iy).Multiply(tx))
	bottom := d.At(ix, iy+1).Multiply(1 - tx).Add(d.At(ix+1, iy+1).Multiply(tx))
	return top.Multiply(1 - ty).Add(bottom.Multiply(ty))
}

// Linearize converts gamma-encoded pixels to linear light in place
func (d *ImageData) Linearize(gamma float64) *ImageData {
	for i, p := range d.Pixels {
		d.Pixels[i] = core.NewVec3(math.Pow(p.X, gamma), math.Pow(p.Y, gamma), math.Pow(p.Z, gamma))
	}
	return d
}
