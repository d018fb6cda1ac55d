package view

import "github.com/gekko3d/luma/backend"

// MaxFrameLatency bounds how many in-flight frames FrameSkipper can track,
// mirroring FrameSkipper.h's MAX_FRAME_LATENCY array capacity (4); the
// latency a caller actually configures is typically 2 (spec.md §5).
const MaxFrameLatency = 4

// FrameSkipper bounds GPU/CPU skew by tracking a short queue of backend
// sync fences and refusing to start a new frame until the oldest one has
// signaled (spec.md §5, "Backpressure"). Grounded verbatim on Filament's
// FrameSkipper.{h,cpp}: a fixed-size ring of sync handles, shifted down by
// one slot on every successful BeginFrame, with a fresh sync stamped into
// the last slot on EndFrame.
type FrameSkipper struct {
	driver backend.DriverAPI
	syncs  []backend.SyncHandle
}

// NewFrameSkipper creates a FrameSkipper tracking up to latency in-flight
// frames, clamped to MaxFrameLatency (the original asserts on this instead;
// clamping keeps a misconfigured caller from silently growing the ring
// past its only ever-observed size).
func NewFrameSkipper(driver backend.DriverAPI, latency int) *FrameSkipper {
	if latency > MaxFrameLatency {
		latency = MaxFrameLatency
	}
	if latency < 1 {
		latency = 1
	}
	return &FrameSkipper{driver: driver, syncs: make([]backend.SyncHandle, latency)}
}

// BeginFrame reports whether a new frame may proceed. false means the GPU
// is still working through a fence older than the configured latency; the
// caller must skip command generation and presentation entirely for this
// frame and must not call EndFrame.
func (f *FrameSkipper) BeginFrame() bool {
	oldest := f.syncs[0]
	if oldest != backend.InvalidSync {
		if f.driver.GetSyncStatus(oldest) == backend.SyncNotReady {
			return false
		}
		f.driver.DestroySync(oldest)
	}
	copy(f.syncs, f.syncs[1:])
	f.syncs[len(f.syncs)-1] = backend.InvalidSync
	return true
}

// EndFrame stamps a new fence into the last slot, replacing one there
// already (possible if the caller skipped a BeginFrame's false result and
// produced a frame anyway).
func (f *FrameSkipper) EndFrame() {
	last := len(f.syncs) - 1
	if f.syncs[last] != backend.InvalidSync {
		f.driver.DestroySync(f.syncs[last])
	}
	f.syncs[last] = f.driver.CreateSync()
}

// Close releases every outstanding fence, mirroring ~FrameSkipper.
func (f *FrameSkipper) Close() {
	for _, s := range f.syncs {
		if s != backend.InvalidSync {
			f.driver.DestroySync(s)
		}
	}
}
