package loaders

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/noise"
)

// CubeFace identifies one face of a cube map
type CubeFace int

const (
	PositiveX CubeFace = iota
	NegativeX
	PositiveY
	NegativeY
	PositiveZ
	NegativeZ
)

// faceNames are the file name stems LoadCubeMap looks for, in CubeFace order
var faceNames = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

// imageExtensions are tried in order for every face
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// skyGamma is the encoding gamma assumed for skybox images
const skyGamma = 2.2

// CubeMapSkybox samples six face images
type CubeMapSkybox struct {
	Faces     [6]*ImageData
	Intensity float64
}

// NewCubeMapSkybox creates a cube map skybox from six linear-light faces in CubeFace order
func NewCubeMapSkybox(faces [6]*ImageData, intensity float64) (*CubeMapSkybox, error) {
	for i, face := range faces {
		if face == nil || face.Width == 0 || face.Height == 0 {
			return nil, fmt.Errorf("cube map face %s is empty", faceNames[i])
		}
	}
	return &CubeMapSkybox{Faces: faces, Intensity: intensity}, nil
}

// LoadCubeMap loads px, nx, py, ny, pz and nz images from dir. Each face may
// be PNG, JPEG or WebP.
func LoadCubeMap(dir string, intensity float64) (*CubeMapSkybox, error) {
	var faces [6]*ImageData
	for i, name := range faceNames {
		path, err := findFace(dir, name)
		if err != nil {
			return nil, err
		}
		face, err := LoadImage(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load cube map face %s: %w", name, err)
		}
		faces[i] = face.Linearize(skyGamma)
	}
	return NewCubeMapSkybox(faces, intensity)
}

func findFace(dir, name string) (string, error) {
	for _, ext := range imageExtensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("cube map face %s not found in %s", name, dir)
}

// CubeFaceCoords returns the face a direction hits and the (u, v) texture
// coordinates on it, following the OpenGL cube map convention.
func CubeFaceCoords(d core.Vec3) (CubeFace, float64, float64) {
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)

	var face CubeFace
	var sc, tc, ma float64
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if d.X > 0 {
			face, sc, tc = PositiveX, -d.Z, -d.Y
		} else {
			face, sc, tc = NegativeX, d.Z, -d.Y
		}
	case ay >= az:
		ma = ay
		if d.Y > 0 {
			face, sc, tc = PositiveY, d.X, d.Z
		} else {
			face, sc, tc = NegativeY, d.X, -d.Z
		}
	default:
		ma = az
		if d.Z > 0 {
			face, sc, tc = PositiveZ, d.X, -d.Y
		} else {
			face, sc, tc = NegativeZ, -d.X, -d.Y
		}
	}

	if ma == 0 {
		return PositiveX, 0.5, 0.5
	}
	return face, (sc/ma + 1) / 2, (tc/ma + 1) / 2
}

// Sample implements core.Skybox
func (c *CubeMapSkybox) Sample(direction core.Vec3) core.Vec3 {
	face, u, v := CubeFaceCoords(direction)
	return c.Faces[face].Sample(u, v).Multiply(c.Intensity)
}

// UniformSkybox returns the same color in every direction
type UniformSkybox struct {
	Color core.Vec3
}

// NewUniformSkybox creates a uniform skybox
func NewUniformSkybox(color core.Vec3) *UniformSkybox {
	return &UniformSkybox{Color: color}
}

// Sample implements core.Skybox
func (u *UniformSkybox) Sample(direction core.Vec3) core.Vec3 {
	return u.Color
}

// StarfieldSkybox is a procedural sky of point-like stars over a faint FBM
// haze. Stars live in the cells of a lattice laid over the unit sphere.
type StarfieldSkybox struct {
	Density     float64   // Lattice cells per unit of direction
	Probability float64   // Fraction of cells holding a star
	Sharpness   float64   // Gaussian falloff of a star around its cell center
	Intensity   float64   // Brightness of the brightest stars
	Haze        float64   // Brightness of the background haze
	HazeColor   core.Vec3 // Tint of the background haze
}

// NewStarfieldSkybox returns a starfield with sensible default values
func NewStarfieldSkybox() *StarfieldSkybox {
	return &StarfieldSkybox{
		Density:     180,
		Probability: 0.03,
		Sharpness:   12,
		Intensity:   3,
		Haze:        0.02,
		HazeColor:   core.NewVec3(0.55, 0.6, 1),
	}
}

// Sample implements core.Skybox
func (s *StarfieldSkybox) Sample(direction core.Vec3) core.Vec3 {
	d := direction.Normalize()
	color := core.Vec3{}

	if s.Haze > 0 {
		haze := noise.SampleFBM(d.Multiply(3), 0.8, 4) / noise.AmplitudeSum(0.8, 4)
		color = s.HazeColor.Multiply(s.Haze * haze * haze)
	}

	p := d.Multiply(s.Density)
	cell := core.NewVec3(math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z))

	// Value noise on integer lattice points is a pure hash of the cell
	chance := noise.Noise3(cell)
	threshold := 1 - s.Probability
	if chance < threshold || s.Probability <= 0 {
		return color
	}

	offset := p.Subtract(cell).Subtract(core.NewVec3(0.5, 0.5, 0.5))
	falloff := math.Exp(-s.Sharpness * offset.LengthSquared())
	magnitude := math.Pow((chance-threshold)/s.Probability, 3)

	// A second hash picks the star's tint between warm and cool
	warmth := noise.Noise3(cell.Add(core.NewVec3(101, 0, 0)))
	tint := core.NewVec3(1, 0.85, 0.7).Multiply(warmth).Add(core.NewVec3(0.75, 0.85, 1).Multiply(1 - warmth))

	return color.Add(tint.Multiply(s.Intensity * magnitude * falloff))
}
