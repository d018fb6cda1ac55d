package froxel

import "github.com/gekko3d/luma/arena"

// RecordBufferCapacity bounds the total number of light-index entries
// across all froxels (spec.md §3.1, RECORD_BUFFER_CAPACITY).
const RecordBufferCapacity = 65536

// FroxelEntry is the 32-bit GPU-visible record for one froxel: an offset
// into the record buffer plus point/spot light counts (spec.md §3.1).
// Open Question resolution 2: the record buffer is always uint16 (not a
// compile-time u8/u16 choice); only the per-froxel counts saturate at 255
// (F-I1), matching the source renderer's uint8_t FroxelEntry fields.
type FroxelEntry struct {
	Offset     uint16
	PointCount uint8
	SpotCount  uint8
}

// Total returns PointCount + SpotCount.
func (e FroxelEntry) Total() int {
	return int(e.PointCount) + int(e.SpotCount)
}

// RecordBuffer is the flat concatenation of light indices referenced by
// every FroxelEntry (spec.md §3.1). Each froxel's lights live at
// [entry.Offset, entry.Offset+entry.Total()), points before spots (F-I2).
type RecordBuffer struct {
	Indices []uint16
	cursor  int
}

// NewRecordBuffer allocates a RecordBuffer with the given capacity (use
// RecordBufferCapacity in production; tests may use a smaller value to
// exercise the overflow path).
func NewRecordBuffer(capacity int) *RecordBuffer {
	return &RecordBuffer{Indices: make([]uint16, capacity)}
}

// NewRecordBufferFromPool is NewRecordBuffer backed by pool instead of a
// fresh allocation: it reuses a previous frame's buffer when its retained
// capacity covers capacity, falling back to make() otherwise. The returned
// buffer's stale tail past the write cursor is never zeroed — compress only
// ever reads [0, cursor), and every FroxelEntry it hands out points inside
// that range (spec.md §4.1.3).
func NewRecordBufferFromPool(pool *arena.Pool[uint16], capacity int) *RecordBuffer {
	return &RecordBuffer{Indices: pool.GetLen(capacity)}
}

// Release returns b's backing storage to pool for a future
// NewRecordBufferFromPool call. The caller must be done with b — typically
// once the frame that produced it has finished being consumed by the GPU
// upload step.
func (b *RecordBuffer) Release(pool *arena.Pool[uint16]) {
	pool.Put(b.Indices[:0])
}

// Remaining returns how many more entries can be written before overflow.
func (b *RecordBuffer) Remaining() int {
	return len(b.Indices) - b.cursor
}

// Append reserves count entries at the current cursor and returns their
// starting offset, or ok=false if doing so would exceed capacity
// (spec.md §4.1.3's "Record-buffer-full policy").
func (b *RecordBuffer) Append(indices []uint16) (offset uint16, ok bool) {
	if b.cursor+len(indices) > len(b.Indices) {
		return 0, false
	}
	offset = uint16(b.cursor)
	copy(b.Indices[b.cursor:], indices)
	b.cursor += len(indices)
	return offset, true
}

// Cursor returns the current write position.
func (b *RecordBuffer) Cursor() int {
	return b.cursor
}

// Reset rewinds the buffer to empty, for reuse across frames.
func (b *RecordBuffer) Reset() {
	b.cursor = 0
}
