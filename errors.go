package luma

import "errors"

// Sentinel errors surfaced from view preparation (spec.md §7).
var (
	// ErrInvalidViewport is returned when a view is prepared with a zero or
	// negative viewport extent, a non-finite projection matrix, or zf <= zn.
	ErrInvalidViewport = errors.New("luma: invalid viewport or projection")

	// ErrInvariantViolation marks a programming error (out-of-range index,
	// double free of a cache handle, ...). In debug builds callers are
	// expected to panic on it; in release builds it is logged and ignored.
	ErrInvariantViolation = errors.New("luma: invariant violation")
)
