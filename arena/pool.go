package arena

import "sync"

// Pool recycles medium-sized slice allocations (record buffers, per-job
// scratch buffers, command arrays) across frames instead of letting the GC
// churn through them every frame. Grounded on the teacher's
// particles_ecs.go worker-pool, which pools []core.ParticleInstance buffers
// per emitter job via a raw sync.Pool; this generalizes that pattern into a
// reusable type.
type Pool[T any] struct {
	pool sync.Pool
}

// NewPool creates a Pool whose Get falls back to calling newFn when empty.
func NewPool[T any](newFn func() []T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				buf := newFn()
				return &buf
			},
		},
	}
}

// Get returns a buffer from the pool, truncated to length 0 so callers
// always append into it from scratch.
func (p *Pool[T]) Get() []T {
	buf := p.pool.Get().(*[]T)
	return (*buf)[:0]
}

// Put returns buf to the pool for reuse by a future Get.
func (p *Pool[T]) Put(buf []T) {
	p.pool.Put(&buf)
}

// GetLen returns a buffer from the pool extended (or, if its retained
// capacity is too small, freshly allocated) to exactly length n. Callers
// that index a fixed-length buffer directly rather than appending into it
// can use this instead of re-deriving the same truncate-then-reslice check
// themselves.
func (p *Pool[T]) GetLen(n int) []T {
	buf := p.Get()
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]T, n)
}
