package renderer

import (
	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	nearPlane = 0.1
	farPlane  = 1000.0
)

// CameraConfig places the observer. Positions are relative to the black hole
// at the world origin.
type CameraConfig struct {
	Position core.Vec3 `json:"position"`
	LookAt   core.Vec3 `json:"lookAt"`
	Up       core.Vec3 `json:"up"`
	VFov     float64   `json:"vfov"` // Vertical field of view in degrees
}

// Camera generates primary ray directions from the camera-to-world and
// inverse projection transforms.
type Camera struct {
	origin            core.Vec3
	cameraToWorld     mgl64.Mat4
	inverseProjection mgl64.Mat4
	width, height     int
}

// NewCamera creates a camera for an image of the given pixel dimensions
func NewCamera(config CameraConfig, width, height int) *Camera {
	up := config.Up
	if up.IsZero() {
		up = core.NewVec3(0, 1, 0)
	}
	aspect := float64(width) / float64(max(height, 1))

	view := mgl64.LookAtV(toMgl(config.Position), toMgl(config.LookAt), toMgl(up))
	projection := mgl64.Perspective(mgl64.DegToRad(config.VFov), aspect, nearPlane, farPlane)

	return &Camera{
		origin:            config.Position,
		cameraToWorld:     view.Inv(),
		inverseProjection: projection.Inv(),
		width:             width,
		height:            height,
	}
}

// Origin returns the world-space camera position
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// GetRay returns the world-space unit direction through the center of pixel
// (i, j). Row 0 is the top of the image.
func (c *Camera) GetRay(i, j int) core.Vec3 {
	ndcX := 2*(float64(i)+0.5)/float64(c.width) - 1
	ndcY := 1 - 2*(float64(j)+0.5)/float64(c.height)

	// Unproject onto the near plane, then treat the view-space point as a direction
	near := c.inverseProjection.Mul4x1(mgl64.Vec4{ndcX, ndcY, -1, 1})
	view := near.Vec3().Mul(1 / near.W())
	world := c.cameraToWorld.Mul4x1(view.Vec4(0))

	return fromMgl(world.Vec3()).Normalize()
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
