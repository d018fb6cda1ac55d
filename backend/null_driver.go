package backend

import "sync"

// NullDriver implements DriverAPI without touching a GPU: handles are
// sequential counters, buffer/texture contents are kept in memory only far
// enough to let tests assert on them, and syncs signal immediately. Used by
// renderpass/view tests that need a real DriverAPI to execute commands
// against.
type NullDriver struct {
	mu sync.Mutex

	nextHandle uint32

	buffers  map[BufferHandle][]byte
	textures map[TextureHandle]struct{}
	targets  map[RenderTargetHandle]struct{}
	syncs    map[SyncHandle]bool

	// Draws records every Draw call in order, for assertions.
	Draws []Primitive
	// BoundUniforms records the last buffer bound at each binding point.
	BoundUniforms map[int]BufferHandle

	inPass bool
}

// NewNullDriver returns a ready-to-use NullDriver.
func NewNullDriver() *NullDriver {
	return &NullDriver{
		buffers:       make(map[BufferHandle][]byte),
		textures:      make(map[TextureHandle]struct{}),
		targets:       make(map[RenderTargetHandle]struct{}),
		syncs:         make(map[SyncHandle]bool),
		BoundUniforms: make(map[int]BufferHandle),
	}
}

func (d *NullDriver) alloc() uint32 {
	d.nextHandle++
	return d.nextHandle
}

func (d *NullDriver) CreateBufferObject(usage BufferUsage, byteSize int) BufferHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := BufferHandle(d.alloc())
	d.buffers[h] = make([]byte, byteSize)
	return h
}

func (d *NullDriver) DestroyBufferObject(h BufferHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.buffers, h)
}

func (d *NullDriver) UpdateBufferObject(h BufferHandle, data []byte, offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[h]
	if !ok {
		return // invalid handle: no-op per spec.md §7
	}
	if offset+len(data) > len(buf) {
		grown := make([]byte, offset+len(data))
		copy(grown, buf)
		buf = grown
		d.buffers[h] = buf
	}
	copy(buf[offset:], data)
}

func (d *NullDriver) CreateTexture(target TextureTarget, levels int, format TextureFormat, samples, w, h, depth int, usage TextureUsage) TextureHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	th := TextureHandle(d.alloc())
	d.textures[th] = struct{}{}
	return th
}

func (d *NullDriver) DestroyTexture(h TextureHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.textures, h)
}

func (d *NullDriver) Update3DImage(h TextureHandle, level, x, y, z, w, ht, depth int, data []byte) {
	// Contents aren't modeled; presence is enough for the tests this fake serves.
}

func (d *NullDriver) CreateRenderTarget(color, depth TextureHandle) RenderTargetHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	rt := RenderTargetHandle(d.alloc())
	d.targets[rt] = struct{}{}
	return rt
}

func (d *NullDriver) BeginRenderPass(target RenderTargetHandle, params RenderTargetParams) {
	d.mu.Lock()
	d.inPass = true
	d.mu.Unlock()
}

func (d *NullDriver) Draw(pipeline PipelineHandle, prim Primitive) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Draws = append(d.Draws, prim)
}

func (d *NullDriver) EndRenderPass() {
	d.mu.Lock()
	d.inPass = false
	d.mu.Unlock()
}

func (d *NullDriver) BindUniformBuffer(bindingPoint int, h BufferHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.BoundUniforms[bindingPoint] = h
}

func (d *NullDriver) BindUniformBufferRange(bindingPoint int, h BufferHandle, offset, size int) {
	d.BindUniformBuffer(bindingPoint, h)
}

func (d *NullDriver) CreateSync() SyncHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := SyncHandle(d.alloc())
	d.syncs[s] = true // NullDriver signals immediately: no real GPU latency to model.
	return s
}

func (d *NullDriver) DestroySync(h SyncHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.syncs, h)
}

// SetSyncPending marks an already-created sync as not yet signaled, so
// tests can simulate a GPU that's running behind the CPU (NullDriver
// otherwise signals every sync immediately, which can't exercise
// FrameSkipper's skip path on its own).
func (d *NullDriver) SetSyncPending(h SyncHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.syncs[h]; ok {
		d.syncs[h] = false
	}
}

func (d *NullDriver) GetSyncStatus(h SyncHandle) SyncStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	if signaled, ok := d.syncs[h]; ok && signaled {
		return SyncSignaled
	}
	return SyncNotReady
}
