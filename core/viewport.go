// Package core holds the plain data types shared by every other package of
// the light-clustering core: viewport/camera snapshots, the tagged Light
// variant, renderables and their primitives, and materials. It is the Go
// analogue of the teacher's voxelrt/rt/core package (camera.go, light.go,
// material.go, scene.go), generalized from voxel ray tracing to rasterized,
// froxel-clustered forward rendering.
package core

import "fmt"

// Viewport is an integer pixel rectangle (spec.md §3.1).
type Viewport struct {
	Left, Bottom  int32
	Width, Height int32
}

// Valid reports whether the viewport has a positive extent.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", v.Width, v.Height, v.Left, v.Bottom)
}
