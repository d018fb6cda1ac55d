package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraInfo is an immutable snapshot of a camera for one frame (spec.md
// §3.1). Grounded on the teacher's voxelrt/rt/core.CameraState, generalized
// from a first-person fly camera into the plain view/projection snapshot a
// renderer core consumes (the CPU camera *component* that produces this
// snapshot is explicitly out of scope, per spec.md §1).
type CameraInfo struct {
	View        mgl32.Mat4 // world -> view
	Proj        mgl32.Mat4 // view -> clip, used for froxelization and rendering
	CullingProj mgl32.Mat4 // view -> clip, used only for frustum culling (may differ, e.g. debug cameras)
	Near        float32
	Far         float32
	EV100       float32
	WorldOrigin mgl32.Mat4
}

// Position extracts the camera's world-space eye position from the inverse
// view matrix.
func (c CameraInfo) Position() mgl32.Vec3 {
	inv := c.View.Inv()
	return inv.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
}

// Forward extracts the camera's world-space forward vector (-Z in view
// space, per the renderer's right-handed convention).
func (c CameraInfo) Forward() mgl32.Vec3 {
	inv := c.View.Inv()
	return inv.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3().Normalize()
}

// FrustumPlanes holds the 6 planes of a frustum, ordered Left, Right,
// Bottom, Top, Near, Far. Each plane is {A, B, C, D} with Ax+By+Cz+D=0 and
// the normal pointing inward.
type FrustumPlanes [6]mgl32.Vec4

const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// ExtractFrustum derives the 6 frustum planes from a view-projection
// matrix using the standard Gribb/Hartmann row-combination method.
// Grounded verbatim on the teacher's voxelrt/rt/core.CameraState.ExtractFrustum.
func ExtractFrustum(vp mgl32.Mat4) FrustumPlanes {
	var planes FrustumPlanes

	planes[PlaneLeft] = mgl32.Vec4{
		vp.At(3, 0) + vp.At(0, 0),
		vp.At(3, 1) + vp.At(0, 1),
		vp.At(3, 2) + vp.At(0, 2),
		vp.At(3, 3) + vp.At(0, 3),
	}
	planes[PlaneRight] = mgl32.Vec4{
		vp.At(3, 0) - vp.At(0, 0),
		vp.At(3, 1) - vp.At(0, 1),
		vp.At(3, 2) - vp.At(0, 2),
		vp.At(3, 3) - vp.At(0, 3),
	}
	planes[PlaneBottom] = mgl32.Vec4{
		vp.At(3, 0) + vp.At(1, 0),
		vp.At(3, 1) + vp.At(1, 1),
		vp.At(3, 2) + vp.At(1, 2),
		vp.At(3, 3) + vp.At(1, 3),
	}
	planes[PlaneTop] = mgl32.Vec4{
		vp.At(3, 0) - vp.At(1, 0),
		vp.At(3, 1) - vp.At(1, 1),
		vp.At(3, 2) - vp.At(1, 2),
		vp.At(3, 3) - vp.At(1, 3),
	}
	planes[PlaneNear] = mgl32.Vec4{
		vp.At(3, 0) + vp.At(2, 0),
		vp.At(3, 1) + vp.At(2, 1),
		vp.At(3, 2) + vp.At(2, 2),
		vp.At(3, 3) + vp.At(2, 3),
	}
	planes[PlaneFar] = mgl32.Vec4{
		vp.At(3, 0) - vp.At(2, 0),
		vp.At(3, 1) - vp.At(2, 1),
		vp.At(3, 2) - vp.At(2, 2),
		vp.At(3, 3) - vp.At(2, 3),
	}

	for i := range planes {
		length := float32(math.Sqrt(float64(
			planes[i][0]*planes[i][0] + planes[i][1]*planes[i][1] + planes[i][2]*planes[i][2])))
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}
	return planes
}

// InverseProjection returns the inverse of a projection matrix, used by the
// froxelizer to unproject froxel-grid edges back to view space.
func InverseProjection(p mgl32.Mat4) mgl32.Mat4 {
	return p.Inv()
}
