package core

import "math"

// cosf and sinf are float32 wrappers kept local to core so callers never
// have to round-trip through float64 at call sites, matching the teacher's
// convention in voxelrt/rt/core/camera.go of keeping trig at float32.
func cosf(x float32) float32 { return float32(math.Cos(float64(x))) }
func sinf(x float32) float32 { return float32(math.Sin(float64(x))) }
