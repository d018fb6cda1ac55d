// Package scene turns a flat entity list into the RenderableSoa/LightSoa
// pair the rest of the core consumes (spec.md §4.4). Grounded on the
// teacher's voxelrt/rt/core/scene.go Scene.Commit entity walk
// (UpdateWorldAABB + VisibleObjects population), generalized from a single
// voxel-object list into the renderable/light dual walk spec.md calls for,
// and restructured from array-of-structs into the SoA tables core/soa.go
// already defines.
package scene

import (
	"github.com/gekko3d/luma/core"
	"github.com/go-gl/mathgl/mgl32"
)

// EntityRenderable is the renderable-component data one Entity may carry.
// Everything here is in local (object) space except what's already
// resolution-independent (visibility masks, priority, culling mode).
type EntityRenderable struct {
	LocalAABB core.AABB

	Visibility core.VisibilityMask
	LayerMask  uint32
	Channels   uint32
	Priority   uint8

	CastShadows    bool
	ReceiveShadows bool
	Culling        core.CullingMode

	Primitives []core.Primitive
}

// Entity is one scene node: a world transform plus an optional renderable
// component and/or an optional light component (spec.md §4.4.2, "if alive
// and has a renderable component, write one row; if alive and has a light
// component, write one row" — the same entity can contribute to both
// SoAs, e.g. a light fixture mesh with an attached point light).
type Entity struct {
	Alive     bool
	Transform mgl32.Mat4 // object -> world

	Renderable *EntityRenderable
	Light      *core.Light
}

// Prepare walks entities once and produces the RenderableSoa/LightSoa pair
// scene preparation is responsible for (spec.md §4.4.1, §4.4.2 steps 1-4).
// Culling (§4.4.3) and partitioning run as a separate step over the
// returned RenderableSoa/LightSoa, since they need the frustum planes a
// camera snapshot provides and Prepare itself is camera-independent.
func Prepare(entities []Entity) (*core.RenderableSoa, *core.LightSoa) {
	var renderables []Entity
	var directionals []Entity
	var positionals []Entity

	for _, e := range entities {
		if !e.Alive {
			continue
		}
		if e.Renderable != nil {
			renderables = append(renderables, e)
		}
		if e.Light != nil {
			if e.Light.IsDirectional() {
				directionals = append(directionals, e)
			} else {
				positionals = append(positionals, e)
			}
		}
	}

	return buildRenderableSoa(renderables), buildLightSoa(directionals, positionals)
}

func buildRenderableSoa(renderables []Entity) *core.RenderableSoa {
	soa := core.NewRenderableSoa(len(renderables))
	for i, e := range renderables {
		r := e.Renderable
		worldAABB := core.TransformAABB(r.LocalAABB, e.Transform)

		soa.SetRow(i, core.Renderable{
			WorldAABB:       worldAABB,
			Visibility:      r.Visibility,
			LayerMask:       r.LayerMask,
			Channels:        r.Channels,
			Priority:        r.Priority,
			CastShadows:     r.CastShadows,
			ReceiveShadows:  r.ReceiveShadows,
			ReversedWinding: signedDeterminant3x3(e.Transform) < 0,
			Culling:         r.Culling,
			Primitives:      r.Primitives,
		})
	}
	return soa
}

// buildLightSoa implements spec.md §4.4.2 step 2's light-ordering rule: the
// highest-intensity directional light becomes row 0, every other
// directional light follows it, and positional lights append after.
func buildLightSoa(directionals, positionals []Entity) *core.LightSoa {
	soa := core.NewLightSoa(len(directionals) + len(positionals))
	soa.DirectionalCount = len(directionals)

	if len(directionals) > 0 {
		dominant := 0
		for i := 1; i < len(directionals); i++ {
			if directionals[i].Light.Intensity > directionals[dominant].Light.Intensity {
				dominant = i
			}
		}
		soa.SetRow(0, *directionals[dominant].Light)

		row := 1
		for i, e := range directionals {
			if i == dominant {
				continue
			}
			soa.SetRow(row, *e.Light)
			row++
		}
	}

	for i, e := range positionals {
		soa.SetRow(len(directionals)+i, *e.Light)
	}
	return soa
}

// signedDeterminant3x3 computes the determinant of a transform's
// upper-left 3x3 (spec.md §4.4.2 step 4): negative means the transform
// flips handedness, so back-face culling must flip with it.
func signedDeterminant3x3(m mgl32.Mat4) float32 {
	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}
