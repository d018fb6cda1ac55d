package froxel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// sphere4 is {center.xyz, radiusSquared}, matching Filament's convention of
// keeping the squared radius in the W component throughout the
// froxelization math so no sqrt is needed until the very end.
type sphere4 = mgl32.Vec4

// spherePlaneIntersection returns the circle formed by intersecting sphere
// s (radius pre-squared) with plane p (normalized, {nx,ny,nz,d}), as a new
// sphere4 whose W is <= 0 when there is no intersection. Translated from
// Filament's Intersections.h.
func spherePlaneIntersection(s sphere4, p mgl32.Vec4) sphere4 {
	d := s.X()*p.X() + s.Y()*p.Y() + s.Z()*p.Z() + p.W()
	rr := s.W() - d*d
	return sphere4{s.X() - p.X()*d, s.Y() - p.Y()*d, s.Z() - p.Z()*d, rr}
}

func spherePlaneIntersectionZ(s sphere4, pw float32) sphere4 {
	return spherePlaneIntersection(s, mgl32.Vec4{0, 0, 1, pw})
}

func spherePlaneIntersectionY(s sphere4, py, pz float32) sphere4 {
	return spherePlaneIntersection(s, mgl32.Vec4{0, py, pz, 0})
}

func spherePlaneDistanceSquaredX(s sphere4, px, pz float32) float32 {
	return spherePlaneIntersection(s, mgl32.Vec4{px, 0, pz, 0}).W()
}

// sphereConeIntersectionFast is a branch-free (aside from the final
// compare) cone/sphere overlap test that may false-positive in a small
// region near the cone apex, per spec.md §4.1.3 step 7. sphereRadius is a
// plain (non-squared) radius, matching the froxel bounding spheres.
func sphereConeIntersectionFast(sphereCenter mgl32.Vec3, sphereRadius float32,
	conePosition, coneAxis mgl32.Vec3, coneSinInverse, coneCosSquared float32) bool {
	u := conePosition.Sub(coneAxis.Mul(sphereRadius * coneSinInverse))
	d := sphereCenter.Sub(u)
	e := coneAxis.Dot(d)
	dd := d.Dot(d)
	return e*e >= dd*coneCosSquared && e > 0
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
