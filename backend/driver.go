// Package backend defines the opaque command-stream interface the render
// core issues GPU work through (spec.md §6, "Backend command stream
// (consumed): an opaque write-only queue"), plus two implementations: a
// WGPUDriver backed by github.com/cogentcore/webgpu (grounded on the
// teacher's voxelrt/rt/gpu.GpuBufferManager, generalized from a fixed set
// of named buffers/textures into a handle-indexed pool any caller can grow),
// and a NullDriver test fake that records calls without touching a GPU.
package backend

import "github.com/gekko3d/luma/arena"

// BufferHandle, TextureHandle, RenderTargetHandle, and SyncHandle are
// opaque backend resource identifiers. The zero value of each is invalid
// and never returned by a successful create call (spec.md §7, "Backend
// allocation failure: propagated from the backend as an invalid handle").
type BufferHandle uint32
type TextureHandle uint32
type RenderTargetHandle uint32
type SyncHandle uint32
type PipelineHandle uint32

const (
	InvalidBuffer       BufferHandle       = 0
	InvalidTexture      TextureHandle      = 0
	InvalidRenderTarget RenderTargetHandle = 0
	InvalidSync         SyncHandle         = 0
	InvalidPipeline     PipelineHandle     = 0
)

// TextureTarget mirrors the handful of texture dimensionalities the core
// cares about (spec.md §6 createTexture's `target` parameter).
type TextureTarget uint8

const (
	Texture2D TextureTarget = iota
	Texture2DArray
	Texture3D
	TextureCube
)

// TextureFormat is an opaque backend pixel format token; the core never
// interprets its value, only threads it through to the backend.
type TextureFormat uint32

// TextureUsage is a bitmask of how a texture will be bound (sampled,
// render-attached, storage-written, ...).
type TextureUsage uint32

const (
	UsageSampled TextureUsage = 1 << iota
	UsageColorAttachment
	UsageDepthStencilAttachment
	UsageStorage
)

// BufferUsage is a bitmask of how a buffer object will be bound.
type BufferUsage uint32

const (
	BufferUsageUniform BufferUsage = 1 << iota
	BufferUsageStorage
	BufferUsageVertex
	BufferUsageIndex
)

// RenderTargetParams describes the attachments and clear behavior of one
// beginRenderPass call.
type RenderTargetParams struct {
	ClearColor   [4]float32
	ClearDepth   float32
	ClearStencil uint32
	ShouldClear  bool
	DiscardStart bool
	DiscardEnd   bool
}

// Primitive is the minimal per-draw state the backend needs beyond the
// bound pipeline and UBO ranges: vertex/index buffers and the index range
// to draw (spec.md §6's `draw(pipeline, primitive)`).
type Primitive struct {
	VertexBuffer BufferHandle
	IndexBuffer  BufferHandle
	IndexOffset  uint32
	IndexCount   uint32
	Culling      uint8
	DepthWrite   bool
	ColorWrite   bool
}

// SyncStatus is the result of polling a SyncHandle.
type SyncStatus uint8

const (
	SyncNotReady SyncStatus = iota
	SyncSignaled
	SyncError
)

// DriverAPI is the full surface spec.md §6 lists. The render core only ever
// depends on this interface, never on a concrete GPU binding, so it can be
// driven headlessly in tests via NullDriver.
type DriverAPI interface {
	// CreateBufferObject allocates a GPU buffer of usage and byteSize bytes.
	CreateBufferObject(usage BufferUsage, byteSize int) BufferHandle
	DestroyBufferObject(h BufferHandle)
	// UpdateBufferObject uploads data at the given byte offset within h.
	UpdateBufferObject(h BufferHandle, data []byte, offset int)

	CreateTexture(target TextureTarget, levels int, format TextureFormat, samples, w, h, d int, usage TextureUsage) TextureHandle
	DestroyTexture(h TextureHandle)
	Update3DImage(h TextureHandle, level, x, y, z, w, ht, d int, data []byte)

	CreateRenderTarget(color, depth TextureHandle) RenderTargetHandle
	BeginRenderPass(target RenderTargetHandle, params RenderTargetParams)
	Draw(pipeline PipelineHandle, prim Primitive)
	EndRenderPass()

	BindUniformBuffer(bindingPoint int, h BufferHandle)
	BindUniformBufferRange(bindingPoint int, h BufferHandle, offset, size int)

	CreateSync() SyncHandle
	DestroySync(h SyncHandle)
	GetSyncStatus(h SyncHandle) SyncStatus
}

// PodAllocator implements spec.md §6's `allocatePod<T>(n) -> *mut T`: a
// per-frame circular command-stream buffer whose contents live exactly one
// frame. Backed by the arena package rather than raw pointer arithmetic —
// see arena's package doc for why.
type PodAllocator struct {
	arena *arena.Arena
}

// NewPodAllocator wraps an arena for allocatePod-style per-frame command
// data (UBO staging blocks, draw-call scratch arrays, ...).
func NewPodAllocator(a *arena.Arena) *PodAllocator {
	return &PodAllocator{arena: a}
}

// AllocatePod carves n elements of T out of the frame's command-stream
// arena. Free function (not a method) because Go methods can't be generic.
func AllocatePod[T any](p *PodAllocator, n int) []T {
	return arena.Alloc[T](p.arena, n)
}
