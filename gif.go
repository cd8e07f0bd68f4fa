package main

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"
	"os"
)

// SaveAnimatedGIF writes one GIF frame per image, quantized to the Plan 9
// palette with Floyd-Steinberg dithering. delay is in 100ths of a second.
func SaveAnimatedGIF(images []*image.RGBA, path string, delay int) error {
	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(images)),
		Delay:     make([]int, 0, len(images)),
		LoopCount: 0,
	}

	for _, img := range images {
		pimg := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), img, img.Bounds().Min)

		out.Image = append(out.Image, pimg)
		out.Delay = append(out.Delay, delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return gif.EncodeAll(f, out)
}

// gifDelay converts a frame rate to a GIF frame delay, defaulting to 10 fps
func gifDelay(fps float64) int {
	if fps <= 0 {
		return 10
	}
	return max(1, int(math.Round(100/fps)))
}
