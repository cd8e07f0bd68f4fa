package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/noise"
)

func uniformFrame(width, height, oversample int, c core.Vec4) *Frame {
	pixels := make([]core.Vec4, width*height)
	for i := range pixels {
		pixels[i] = c
	}
	return &Frame{Width: width, Height: height, Oversample: oversample, Pixels: pixels}
}

func TestToneMap(t *testing.T) {
	tests := []struct {
		name     string
		in       core.Vec3
		exposure float64
		gamma    float64
		expected core.Vec3
	}{
		{"black", core.NewVec3(0, 0, 0), 1, 2.2, core.NewVec3(0, 0, 0)},
		{"clamped", core.NewVec3(5, 2, 1), 1, 2.2, core.NewVec3(1, 1, 1)},
		{"linear", core.NewVec3(0.25, 0.5, 1), 1, 1, core.NewVec3(0.25, 0.5, 1)},
		{"exposure", core.NewVec3(0.25, 0.1, 0), 2, 1, core.NewVec3(0.5, 0.2, 0)},
		{"gamma 2", core.NewVec3(0.25, 0.25, 0.25), 1, 2, core.NewVec3(0.5, 0.5, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToneMap(tt.in, tt.exposure, tt.gamma); !vecClose(got, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestResolveDownsamplesOversampledFrame(t *testing.T) {
	frame := uniformFrame(8, 6, 2, core.NewVec4(0.25, 0.5, 1, 1))
	config := ResolveConfig{Exposure: 1, Gamma: 1}

	img := Resolve(frame, 0, 0, config, nil)
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("Expected 4x3 output, got %v", img.Bounds())
	}

	// A uniform image stays uniform through the filter
	expected := color.RGBA{R: 64, G: 128, B: 255, A: 255}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			got := img.RGBAAt(x, y)
			if diff(got.R, expected.R) > 1 || diff(got.G, expected.G) > 1 || got.B != expected.B || got.A != 255 {
				t.Fatalf("Pixel (%d, %d): expected %v, got %v", x, y, expected, got)
			}
		}
	}
}

func TestResolveDitherStaysWithinOneStep(t *testing.T) {
	frame := uniformFrame(16, 16, 1, core.NewVec4(0.5, 0.5, 0.5, 1))
	dither := noise.NewDitherTexture(16, 16, 0.7, 0.5, 4)

	plain := Resolve(frame, 16, 16, ResolveConfig{Exposure: 1, Gamma: 1}, dither)
	dithered := Resolve(frame, 16, 16, ResolveConfig{Exposure: 1, Gamma: 1, Dither: true}, dither)

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			p, d := plain.RGBAAt(x, y), dithered.RGBAAt(x, y)
			if diff(p.R, d.R) > 1 {
				t.Fatalf("Pixel (%d, %d): dither moved value from %d to %d", x, y, p.R, d.R)
			}
		}
	}
}

func TestTo8(t *testing.T) {
	if to8(0xffff, 0.49) != 255 {
		t.Errorf("Expected white to saturate")
	}
	if to8(0, -0.49) != 0 {
		t.Errorf("Expected black to clamp")
	}
	if got := to8(uint16(math.Round(100.4*257)), 0); got != 100 {
		t.Errorf("Expected 100, got %d", got)
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
