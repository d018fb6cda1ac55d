package core

// VisibilityMask is a bitset of layer/channel membership tested against a
// View's visibility mask before a renderable is considered for culling.
type VisibilityMask uint32

// CullingMode selects which face winding is rasterized (or neither, for
// double-sided materials that cull nothing).
type CullingMode uint8

const (
	CullBack CullingMode = iota
	CullFront
	CullNone
)

// Primitive is one drawable piece of a Renderable: a vertex/index range
// plus the material it draws with (spec.md §3.1).
type Primitive struct {
	VertexBuffer uint32 // opaque backend handle
	IndexBuffer  uint32 // opaque backend handle
	IndexOffset  uint32
	IndexCount   uint32

	MaterialInstance MaterialInstance
	BlendOrder       uint16 // user-assigned tiebreaker within the BLENDED pass
}

// Renderable is one drawable entity: a world AABB, visibility state, and
// one or more primitives (spec.md §3.1). Grounded on the teacher's
// voxelrt/rt/core/scene.go renderable-component shape, generalized from a
// single voxel-chunk mesh to an arbitrary multi-primitive renderable.
type Renderable struct {
	WorldAABB AABB

	Visibility VisibilityMask
	LayerMask  uint32
	Channels   uint32

	Priority uint8 // 0..7, spec.md §3.1; higher draws later within a pass

	CastShadows    bool
	ReceiveShadows bool
	ReversedWinding bool

	Culling CullingMode

	Primitives []Primitive
}

// IsVisibleWith reports whether the renderable should be considered given
// a view's active layer mask, matching the bitwise test the teacher's
// culling code performs before any geometric test runs.
func (r Renderable) IsVisibleWith(activeLayerMask uint32) bool {
	return r.LayerMask&activeLayerMask != 0
}
