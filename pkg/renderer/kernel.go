package renderer

import (
	"github.com/df07/go-blackhole-raytracer/pkg/core"
	"github.com/df07/go-blackhole-raytracer/pkg/disk"
	"github.com/df07/go-blackhole-raytracer/pkg/geodesic"
)

// FrameParams are the per-pass values shared by every pixel
type FrameParams struct {
	HardCheck bool    // Enables the pole and bound orbit capture tests
	Time      float64 // Coordinate time of the frame, drives disk rotation
}

// MarchResult summarizes what happened to one pixel during a pass
type MarchResult struct {
	Steps     int
	Crossings int
	Completed bool // The ray terminated during this pass
}

// Kernel advances a single ray. It only reads its fields, so one Kernel is
// shared by every worker.
type Kernel struct {
	Metric       geodesic.Metric
	Shader       *disk.Shader // Optional; nil renders without a disk
	Skybox       core.Skybox
	Step         geodesic.StepConfig
	Classifier   geodesic.ClassifierConfig
	StepsPerPass int
}

// March integrates ray for up to StepsPerPass steps, shading disk crossings
// and stopping early once the ray is captured or escapes.
func (k *Kernel) March(ray *RayState, frame FrameParams) MarchResult {
	var result MarchResult
	if ray.Complete {
		return result
	}

	rs := k.Metric.HorizonRadius()
	var inner, outer float64
	if k.Shader != nil {
		inner, outer = k.Shader.Bounds()
	}

	for result.Steps < k.StepsPerPass {
		h := geodesic.CalculateStepSize(ray.Position, ray.Momentum, rs, k.Step)
		x, p := geodesic.RK4Step(k.Metric, ray.Position, ray.Momentum, h)
		result.Steps++

		if k.Shader != nil {
			if crossing, ok := geodesic.DiskCheck(ray.Position, x, inner, outer); ok {
				// Material is seen as it was when the light left it
				ray.Color = ray.Color.Add(k.Shader.Shade(disk.Sample{
					R:         crossing.R,
					Phi:       crossing.Phi,
					Direction: geodesic.Direction(k.Metric, x, p),
					Time:      frame.Time - crossing.T,
				}))
				ray.Crossings++
				result.Crossings++
			}
		}

		ray.Position, ray.Momentum = x, p

		if geodesic.HorizonCheck(k.Metric, x, p, frame.HardCheck, k.Classifier) {
			ray.Color = ray.Color.Add(core.Vec4{A: 1})
			ray.Outcome = Captured
			ray.Complete = true
			result.Completed = true
			break
		}
		if geodesic.EscapeCheck(x, rs, k.Classifier.EscapeDistance) {
			ray.Color = ray.Color.Add(core.Vec4{Vec3: k.sky(x, p), A: 1})
			ray.Outcome = Escaped
			ray.Complete = true
			result.Completed = true
			break
		}
	}

	return result
}

func (k *Kernel) sky(x geodesic.Position, p geodesic.Momentum) core.Vec3 {
	if k.Skybox == nil {
		return core.Vec3{}
	}
	return k.Skybox.Sample(geodesic.Direction(k.Metric, x, p))
}
