package view

import (
	"math"

	"github.com/gekko3d/luma/core"
	"github.com/go-gl/mathgl/mgl32"
)

// DynamicResolutionOptions configures one View's resolution controller
// (spec.md §4.4.4).
type DynamicResolutionOptions struct {
	Enabled bool

	// HomogeneousScaling forces equal X/Y scale factors; when false the
	// major axis is scaled down first, preserving aspect ratio as long as
	// possible before the minor axis gives way too.
	HomogeneousScaling bool

	MinScale mgl32.Vec2
	MaxScale mgl32.Vec2

	TargetFrameTimeMs float32
	HeadroomRatio     float32

	Kp, Ki, Kd float32
}

// FrameInfo is the one frame-timing sample the resolution controller
// consumes (spec.md §4.4.4's "denoised measured frame time").
type FrameInfo struct {
	Valid               bool
	DenoisedFrameTimeMs float32
}

// resolutionController wraps the PID math from details/View.cpp's
// updateScale into a self-contained, per-View piece of state: current
// scale plus the PID controller driving it.
type resolutionController struct {
	options DynamicResolutionOptions
	pid     *PIDController
	scale   mgl32.Vec2
	vp      core.Viewport
}

func newResolutionController(opts DynamicResolutionOptions, vp core.Viewport) *resolutionController {
	return &resolutionController{
		options: opts,
		pid:     NewPIDController(opts.Kp, opts.Ki, opts.Kd),
		scale:   mgl32.Vec2{1, 1},
		vp:      vp,
	}
}

// update runs one PID step and returns the scale to apply to the current
// render resolution this frame. Direct translation of FView::updateScale
// (details/View.cpp): "relative scaling" mode, where the PID output is a
// multiplicative command applied to the previous frame's scale rather than
// an absolute target.
func (r *resolutionController) update(info FrameInfo) mgl32.Vec2 {
	opts := r.options
	if !opts.Enabled {
		r.scale = mgl32.Vec2{1, 1}
		return r.scale
	}
	if !info.Valid {
		r.scale = clampVec2(mgl32.Vec2{1, 1}, opts.MinScale, opts.MaxScale)
		return r.scale
	}

	targetWithHeadroom := opts.TargetFrameTimeMs * (1 - opts.HeadroomRatio)
	out := r.pid.Update(info.DenoisedFrameTimeMs/targetWithHeadroom, 1.0, 1.0)

	var command float32
	if out < 0 {
		command = 1.0 / (1.0 - out)
	} else {
		command = 1.0 + out
	}

	scale := r.scale.X() * r.scale.Y() * command

	w := float32(r.vp.Width)
	h := float32(r.vp.Height)
	if scale < 1.0 && !opts.HomogeneousScaling {
		major := maxf(w, h)
		minor := minf(w, h)

		maxMajorScale := minor / major
		majorScale := maxf(scale, maxMajorScale)
		minorScale := maxf(scale/majorScale, majorScale*maxMajorScale)
		homogeneousScale := scale / (majorScale * minorScale)
		sq := sqrtf(homogeneousScale)

		if w > h {
			r.scale = mgl32.Vec2{sq * majorScale, sq * minorScale}
		} else {
			r.scale = mgl32.Vec2{sq * minorScale, sq * majorScale}
		}
	} else {
		sq := sqrtf(scale)
		r.scale = mgl32.Vec2{sq, sq}
	}

	clamped := clampVec2(r.scale, opts.MinScale, opts.MaxScale)
	r.pid.SetIntegralInhibitionEnabled(clamped != r.scale)
	r.scale = clamped
	return r.scale
}

func clampVec2(v, min, max mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		clampf(v.X(), min.X(), max.X()),
		clampf(v.Y(), min.Y(), max.Y()),
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func sqrtf(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(x)))
}
