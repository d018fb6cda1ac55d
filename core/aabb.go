package core

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in whatever space it was computed
// in (local or world). Grounded on the teacher's voxelrt/rt/core/scene.go
// world-AABB transform pattern, generalized from voxel chunks to arbitrary
// renderable primitives.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Center returns the box's center point.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extent returns the box's half-extents.
func (b AABB) Extent() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// BoundingSphere returns the sphere that circumscribes the box's 8
// corners: center at Center(), radius the length of the half-diagonal
// (spec.md F-I5's corner-AABB-to-sphere conversion, reused here for
// renderable bounds as well as froxels).
func (b AABB) BoundingSphere() (center mgl32.Vec3, radius float32) {
	c := b.Center()
	r := b.Max.Sub(c).Len()
	return c, r
}

// Empty reports whether the box has inverted or degenerate extents,
// i.e. was never assigned any points.
func (b AABB) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// EmptyAABB returns an AABB with inverted extents suitable as a fold
// accumulator's zero value.
func EmptyAABB() AABB {
	const inf = float32(1e30)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Union returns the smallest box containing both a and b.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: componentMin(b.Min, o.Min),
		Max: componentMax(b.Max, o.Max),
	}
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minf(a.X(), b.X()), minf(a.Y(), b.Y()), minf(a.Z(), b.Z())}
}

func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxf(a.X(), b.X()), maxf(a.Y(), b.Y()), maxf(a.Z(), b.Z())}
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

// TransformAABB computes the world-space AABB of a local-space box under a
// rigid (or affine) transform by transforming all 8 corners, matching the
// teacher's rigidTransform(localAABB, worldTransform) used in
// voxelrt/rt/core/scene.go.
func TransformAABB(local AABB, xform mgl32.Mat4) AABB {
	corners := [8]mgl32.Vec3{
		{local.Min.X(), local.Min.Y(), local.Min.Z()},
		{local.Max.X(), local.Min.Y(), local.Min.Z()},
		{local.Min.X(), local.Max.Y(), local.Min.Z()},
		{local.Max.X(), local.Max.Y(), local.Min.Z()},
		{local.Min.X(), local.Min.Y(), local.Max.Z()},
		{local.Max.X(), local.Min.Y(), local.Max.Z()},
		{local.Min.X(), local.Max.Y(), local.Max.Z()},
		{local.Max.X(), local.Max.Y(), local.Max.Z()},
	}

	out := EmptyAABB()
	for _, c := range corners {
		w := xform.Mul4x1(mgl32.Vec4{c.X(), c.Y(), c.Z(), 1}).Vec3()
		out.Min = componentMin(out.Min, w)
		out.Max = componentMax(out.Max, w)
	}
	return out
}
