package renderpass

import "math"

func mathFloat32bits(f float32) uint32 {
	return math.Float32bits(f)
}

// PrimitiveInfo references everything Execute needs to issue one draw call
// without touching the scene SoA again (spec.md §3.1).
type PrimitiveInfo struct {
	RenderableIndex uint32
	MaterialID      uint32
	Variant         uint8
	VertexBuffer    uint32
	IndexBuffer     uint32
	IndexOffset     uint32
	IndexCount      uint32
	Culling         uint8 // core.CullingMode value, stored as uint8
	DepthWrite      bool
	ColorWrite      bool
}

// Command pairs a sort key with the primitive it draws (spec.md §3.1).
type Command struct {
	Key       Key
	Primitive PrimitiveInfo
}

// IsSentinel reports whether this command was tagged to be dropped after
// sorting (R-I2).
func (c Command) IsSentinel() bool {
	return c.Key == Sentinel
}
