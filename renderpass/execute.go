package renderpass

import "github.com/gekko3d/luma/backend"

// PipelineSelector resolves a (materialID, variant) pair to the backend
// pipeline handle to draw with, and the per-renderable UBO buffer +
// aligned stride to bind a range from. Supplied by the view layer, which
// owns the material/program cache; renderpass itself has no notion of
// shader compilation (spec.md §1's explicit non-goal).
type PipelineSelector interface {
	Pipeline(materialID uint32, variant uint8) backend.PipelineHandle
	PerRenderableUbo() (handle backend.BufferHandle, stride int)
}

// Execute walks a sorted, already-truncated command slice and issues
// backend draw calls in key order (spec.md §4.2.5): on a material-instance
// change it rebinds per-material state (here: reselects the pipeline,
// since scissor/culling/polygon-offset are encoded directly on
// PrimitiveInfo and applied per draw rather than requiring separate
// backend calls), then binds the per-renderable UBO range and draws.
func Execute(driver backend.DriverAPI, sel PipelineSelector, cmds []Command) {
	var lastMaterialID uint32
	var lastVariant uint8
	var pipeline backend.PipelineHandle
	haveMaterial := false

	uboHandle, uboStride := sel.PerRenderableUbo()

	for _, cmd := range cmds {
		p := cmd.Primitive
		if !haveMaterial || p.MaterialID != lastMaterialID || p.Variant != lastVariant {
			pipeline = sel.Pipeline(p.MaterialID, p.Variant)
			lastMaterialID = p.MaterialID
			lastVariant = p.Variant
			haveMaterial = true
		}

		driver.BindUniformBufferRange(perRenderableBindingPoint, uboHandle,
			int(p.RenderableIndex)*uboStride, uboStride)

		driver.Draw(pipeline, backend.Primitive{
			VertexBuffer: backend.BufferHandle(p.VertexBuffer),
			IndexBuffer:  backend.BufferHandle(p.IndexBuffer),
			IndexOffset:  p.IndexOffset,
			IndexCount:   p.IndexCount,
			Culling:      p.Culling,
			DepthWrite:   p.DepthWrite,
			ColorWrite:   p.ColorWrite,
		})
	}
}

// perRenderableBindingPoint is the fixed UBO binding slot per-renderable
// data is bound to, matching the per-view UBO at a lower, fixed slot
// (spec.md §6's per-view/per-renderable UBO layouts).
const perRenderableBindingPoint = 1
