package renderer

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Animator describes a multi-frame sequence: coordinate time advances by one
// frame period per frame while the camera orbits the world Y axis.
type Animator struct {
	FrameCount      int     `json:"frameCount"`      // Frames to render; 0 or 1 renders a still
	FramesPerSecond float64 `json:"framesPerSecond"` // Coordinate time per frame is 1/FramesPerSecond
	SweepDegrees    float64 `json:"sweepDegrees"`    // Total orbit angle over the whole sequence
}

// TimeStep returns the coordinate time between consecutive frames
func (a Animator) TimeStep() float64 {
	if a.FramesPerSecond <= 0 {
		return 0
	}
	return 1 / a.FramesPerSecond
}

// AngleStep returns the orbit angle between consecutive frames, in degrees
func (a Animator) AngleStep() float64 {
	if a.FrameCount <= 0 {
		return 0
	}
	return a.SweepDegrees / float64(a.FrameCount)
}

// Advance returns the camera and coordinate time of the next frame. The
// camera keeps its distance from the Y axis and its elevation.
func (a Animator) Advance(camera CameraConfig, time float64) (CameraConfig, float64) {
	rotation := mgl64.HomogRotate3DY(mgl64.DegToRad(a.AngleStep()))

	next := camera
	next.Position = fromMgl(rotation.Mul4x1(toMgl(camera.Position).Vec4(1)).Vec3())
	next.LookAt = fromMgl(rotation.Mul4x1(toMgl(camera.LookAt).Vec4(1)).Vec3())
	return next, time + a.TimeStep()
}
