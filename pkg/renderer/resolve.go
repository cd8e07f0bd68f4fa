package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/noise"
	xdraw "golang.org/x/image/draw"
)

// ResolveConfig controls how a float frame becomes an 8-bit image
type ResolveConfig struct {
	Exposure float64 `json:"exposure"` // Linear scale applied before gamma
	Gamma    float64 `json:"gamma"`
	Dither   bool    `json:"dither"` // Add FBM dither before quantizing
}

// DefaultResolveConfig returns sensible default values
func DefaultResolveConfig() ResolveConfig {
	return ResolveConfig{
		Exposure: 1,
		Gamma:    2.2,
		Dither:   true,
	}
}

// ToneMap converts an accumulated linear color to display range [0, 1]
func ToneMap(c core.Vec3, exposure, gamma float64) core.Vec3 {
	c = c.Multiply(exposure).Clamp(0, 1)
	if gamma > 0 && gamma != 1 {
		c = c.GammaCorrect(gamma)
	}
	return c
}

// Resolve tone maps a frame, downsamples it to width x height and quantizes
// it to 8 bits. A zero width or height keeps the frame's own resolution
// divided by its oversampling factor.
func Resolve(frame *Frame, width, height int, config ResolveConfig, dither *noise.DitherTexture) *image.RGBA {
	if width <= 0 || height <= 0 {
		factor := max(frame.Oversample, 1)
		width, height = frame.Width/factor, frame.Height/factor
	}

	// Tone map at full precision so downsampling does not band
	full := image.NewRGBA64(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := ToneMap(frame.Pixels[y*frame.Width+x].Vec3, config.Exposure, config.Gamma)
			full.SetRGBA64(x, y, color.RGBA64{
				R: uint16(math.Round(c.X * 0xffff)),
				G: uint16(math.Round(c.Y * 0xffff)),
				B: uint16(math.Round(c.Z * 0xffff)),
				A: 0xffff,
			})
		}
	}

	scaled := full
	if width != frame.Width || height != frame.Height {
		scaled = image.NewRGBA64(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), full, full.Bounds(), xdraw.Src, nil)
	}

	if !config.Dither {
		dither = nil
	}
	return quantize(scaled, dither)
}

// quantize reduces a 16-bit image to 8 bits, offsetting each pixel by up to
// half a step of dither noise.
func quantize(src *image.RGBA64, dither *noise.DitherTexture) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			offset := 0.0
			if dither != nil {
				offset = dither.Offset(x, y)
			}
			c := src.RGBA64At(x, y)
			dst.SetRGBA(x, y, color.RGBA{
				R: to8(c.R, offset),
				G: to8(c.G, offset),
				B: to8(c.B, offset),
				A: 255,
			})
		}
	}
	return dst
}

func to8(v uint16, offset float64) uint8 {
	scaled := float64(v)/257 + offset
	return uint8(max(0, min(255, math.Round(scaled))))
}
