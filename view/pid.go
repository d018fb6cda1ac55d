package view

// PIDController is a parallel-form PID with an integral clamp and an
// asymmetric output dead-band, tuned for the dynamic-resolution scale
// command rather than a physical plant (spec.md §4.4.4). Grounded on the
// teacher's preference for small, dependency-free numeric helpers living
// next to their one caller (voxelrt/rt/core/camera.go does the same for
// its smoothing filters) and on details/View.cpp's updateScale, which
// drives an equivalent PIDController through setParallelGains/
// setIntegralLimits/setOutputDeadBand/setIntegralInhibitionEnabled — method
// names mirrored here so the call sites read the same way.
type PIDController struct {
	kp, ki, kd float32

	integral  float32
	lastError float32

	integralMin, integralMax float32
	deadBandLo, deadBandHi   float32

	integralInhibited bool
}

// NewPIDController returns a controller with gains kp/ki/kd and the
// spec-mandated ±100 integral clamp and [-0.01, +0.05] output dead-band
// (spec.md §4.4.4).
func NewPIDController(kp, ki, kd float32) *PIDController {
	p := &PIDController{kp: kp, ki: ki, kd: kd}
	p.SetIntegralLimits(-100, 100)
	p.SetOutputDeadBand(-0.01, 0.05)
	return p
}

// SetParallelGains updates the proportional/integral/derivative gains,
// e.g. when the frame-rate target changes and Kp is recomputed from it.
func (p *PIDController) SetParallelGains(kp, ki, kd float32) {
	p.kp, p.ki, p.kd = kp, ki, kd
}

// SetIntegralLimits bounds the accumulated integral term.
func (p *PIDController) SetIntegralLimits(min, max float32) {
	p.integralMin, p.integralMax = min, max
}

// SetOutputDeadBand zeroes any Update output that falls within [lo, hi],
// preventing the controller from reacting to noise-level error.
func (p *PIDController) SetOutputDeadBand(lo, hi float32) {
	p.deadBandLo, p.deadBandHi = lo, hi
}

// SetIntegralInhibitionEnabled suspends integral accumulation, used while
// the caller's output is clamped so the integral term doesn't keep winding
// up against a limit it can't actually move past.
func (p *PIDController) SetIntegralInhibitionEnabled(inhibited bool) {
	p.integralInhibited = inhibited
}

// Error returns the most recent error term, for diagnostics.
func (p *PIDController) Error() float32 { return p.lastError }

// Integral returns the current accumulated integral term, for diagnostics.
func (p *PIDController) Integral() float32 { return p.integral }

// Update advances the controller by one step of size dt given the current
// process variable and setpoint, returning the (possibly dead-banded)
// control output.
func (p *PIDController) Update(processVariable, setpoint, dt float32) float32 {
	err := setpoint - processVariable

	if !p.integralInhibited {
		p.integral += err * dt
		if p.integral > p.integralMax {
			p.integral = p.integralMax
		} else if p.integral < p.integralMin {
			p.integral = p.integralMin
		}
	}

	var derivative float32
	if dt > 0 {
		derivative = (err - p.lastError) / dt
	}
	p.lastError = err

	out := p.kp*err + p.ki*p.integral + p.kd*derivative
	if out > p.deadBandLo && out < p.deadBandHi {
		return 0
	}
	return out
}
