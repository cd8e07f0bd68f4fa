package loaders

import (
	"fmt"
	"math"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
)

// minVisibleTemperature is the coolest temperature given a color of its own;
// cooler emitters reuse its hue.
const minVisibleTemperature = 800.0

// BlackbodyTable is a 2D color lookup indexed by normalized Doppler shift
// (columns) and normalized temperature (rows). Entries are linear light with
// unit luminance.
type BlackbodyTable struct {
	Data *ImageData
}

// Lookup implements core.Blackbody. Both inputs are clamped to [0, 1].
func (b *BlackbodyTable) Lookup(shift, temperature float64) core.Vec3 {
	return b.Data.Sample(clamp01(shift), clamp01(temperature))
}

// LoadBlackbodyTable loads a gamma-encoded lookup image
func LoadBlackbodyTable(path string) (*BlackbodyTable, error) {
	data, err := LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load blackbody table: %w", err)
	}
	return &BlackbodyTable{Data: data.Linearize(skyGamma)}, nil
}

// NewProceduralBlackbody computes a width x height lookup table. Column i
// covers shifts from shiftMin to shiftMax, row j temperatures from tempMin to
// tempMax in Kelvin. Each entry is the color of a blackbody at the observed
// temperature T·shift, normalized to unit luminance.
func NewProceduralBlackbody(width, height int, shiftMin, shiftMax, tempMin, tempMax float64) *BlackbodyTable {
	width, height = max(width, 1), max(height, 1)
	pixels := make([]core.Vec3, width*height)

	for j := 0; j < height; j++ {
		temperature := tempMin + (float64(j)+0.5)/float64(height)*(tempMax-tempMin)
		for i := 0; i < width; i++ {
			shift := shiftMin + (float64(i)+0.5)/float64(width)*(shiftMax-shiftMin)
			pixels[j*width+i] = BlackbodyColor(temperature * shift)
		}
	}

	return &BlackbodyTable{Data: &ImageData{Width: width, Height: height, Pixels: pixels}}
}

// BlackbodyColor returns the linear sRGB color of a blackbody at temperature
// kelvin, scaled to unit luminance.
func BlackbodyColor(kelvin float64) core.Vec3 {
	t := max(kelvin, minVisibleTemperature)

	var x, y, z float64
	for nm := 380.0; nm <= 780.0; nm += 5 {
		radiance := planck(nm*1e-9, t)
		x += radiance * cieX(nm)
		y += radiance * cieY(nm)
		z += radiance * cieZ(nm)
	}

	rgb := core.NewVec3(
		3.2406*x-1.5372*y-0.4986*z,
		-0.9689*x+1.8758*y+0.0415*z,
		0.0557*x-0.2040*y+1.0570*z,
	)
	rgb = core.NewVec3(max(rgb.X, 0), max(rgb.Y, 0), max(rgb.Z, 0))

	luminance := rgb.Luminance()
	if luminance <= 0 {
		return core.Vec3{}
	}
	return rgb.Multiply(1 / luminance)
}

// planck returns spectral radiance up to a constant factor, λ in meters
func planck(lambda, t float64) float64 {
	const c2 = 1.4387769e-2 // Second radiation constant hc/k, m·K
	return 1 / (math.Pow(lambda, 5) * math.Expm1(c2/(lambda*t)))
}

// lobe is a piecewise Gaussian with separate widths below and above its mean
func lobe(x, mean, below, above float64) float64 {
	sigma := above
	if x < mean {
		sigma = below
	}
	d := (x - mean) / sigma
	return math.Exp(-0.5 * d * d)
}

// Multi-lobe fit of the CIE 1931 2° color matching functions (Wyman, Sloan, Shirley 2013)
func cieX(nm float64) float64 {
	return 1.056*lobe(nm, 599.8, 37.9, 31.0) + 0.362*lobe(nm, 442.0, 16.0, 26.7) - 0.065*lobe(nm, 501.1, 20.4, 26.2)
}

func cieY(nm float64) float64 {
	return 0.821*lobe(nm, 568.8, 46.9, 40.5) + 0.286*lobe(nm, 530.9, 16.3, 31.1)
}

func cieZ(nm float64) float64 {
	return 1.217*lobe(nm, 437.0, 11.8, 36.0) + 0.681*lobe(nm, 459.0, 26.0, 13.8)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
