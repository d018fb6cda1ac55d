// Package jobs implements the fixed-size fork-join worker pool described in
// spec.md §5: "a fixed-size worker pool (≈ hardware_concurrency - 2
// threads)... The main thread enqueues jobs and waits for their completion
// at well-defined sync points."
//
// Grounded on the teacher's particles_ecs.go, which hand-rolls exactly this
// shape for its particle-emitter simulation (workerCount :=
// runtime.GOMAXPROCS(0) capped at 8; a jobCh/resCh channel pair; a
// sync.WaitGroup closing resCh once all workers exit). This package lifts
// that one-off pattern into a reusable System so froxel and renderpass (and
// any future caller) share one worker pool and one error-propagation rule
// instead of re-deriving the channel/WaitGroup dance each time.
package jobs

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// System is a fixed-size fork-join dispatcher. One System is typically
// shared by a whole View across a frame's froxelization and command
// generation.
type System struct {
	workers int
}

// New creates a System with the given worker count. A count <= 0 defaults
// to runtime.GOMAXPROCS(0)-2 (floored at 1), matching spec.md §5's sizing
// guidance.
func New(workers int) *System {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0) - 2
		if workers < 1 {
			workers = 1
		}
	}
	return &System{workers: workers}
}

// Workers returns the configured pool size.
func (s *System) Workers() int { return s.workers }

// Dispatch runs every task, bounded to Workers() concurrent goroutines, and
// blocks until all have completed. The first non-nil error returned by any
// task wins (spec.md §7: "the first error wins") and is returned once every
// task has finished; a later task's error is discarded, not swallowed
// silently — every task still runs to completion, consistent with spec.md
// §5 "Cancellation & timeouts: none. A job runs to completion."
func (s *System) Dispatch(tasks []func() error) error {
	if len(tasks) == 0 {
		return nil
	}

	workerCount := s.workers
	if workerCount > len(tasks) {
		workerCount = len(tasks)
	}
	if workerCount < 1 {
		workerCount = 1
	}

	taskCh := make(chan func() error)
	var wg sync.WaitGroup
	var firstErr atomic.Pointer[error]

	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for task := range taskCh {
				if err := task(); err != nil {
					e := err
					firstErr.CompareAndSwap(nil, &e)
				}
			}
		}()
	}

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()

	if p := firstErr.Load(); p != nil {
		return *p
	}
	return nil
}

// ParallelChunks splits [0, total) into chunks of at most chunkSize items
// and runs fn(start, count) for each chunk across the worker pool. Used by
// renderpass command generation, which tiles "job tiles of ≤256 renderables
// each" (spec.md §4.2.6).
func (s *System) ParallelChunks(total, chunkSize int, fn func(start, count int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	var tasks []func() error
	for start := 0; start < total; start += chunkSize {
		start := start
		count := chunkSize
		if start+count > total {
			count = total - start
		}
		tasks = append(tasks, func() error { return fn(start, count) })
	}
	return s.Dispatch(tasks)
}

// ParallelGroups runs fn(group) once per group in [0, groupCount) across the
// worker pool. Used by froxelization, which processes lights "in parallel
// groups of 32 lights per job" (spec.md §4.1.3) — one group per job.
func (s *System) ParallelGroups(groupCount int, fn func(group int) error) error {
	if groupCount <= 0 {
		return nil
	}
	tasks := make([]func() error, groupCount)
	for g := 0; g < groupCount; g++ {
		g := g
		tasks[g] = func() error { return fn(g) }
	}
	return s.Dispatch(tasks)
}
