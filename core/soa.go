package core

import "github.com/go-gl/mathgl/mgl32"

// Range is a half-open [Start, End) index range into an SoA table, used
// instead of pointers or slices so workers can address disjoint regions of
// the same backing arrays without aliasing (spec.md §4.4's "Arena +
// indices over pointer graphs").
type Range struct {
	Start, End uint32
}

// Len returns the number of indices in the range.
func (r Range) Len() uint32 { return r.End - r.Start }

// Empty reports whether the range contains no indices.
func (r Range) Empty() bool { return r.End <= r.Start }

// CeilTo16 rounds n up to the next multiple of 16, the SoA row-count
// padding spec.md §4.4.2 requires so branch-free 8-wide culling never
// reads past the populated rows.
func CeilTo16(n int) int {
	return (n + 15) &^ 15
}

// RenderableSoa is the columnar table scene preparation writes into: one
// row per active renderable, padded to ceil_to_16(n)+1 rows (the extra
// sentinel row stays zero-valued so suffix scans never read garbage).
// Grounded on the teacher's voxelrt/rt/core/scene.go entity walk,
// restructured from an array-of-structs entity list into parallel arrays.
type RenderableSoa struct {
	WorldAABBMin []mgl32.Vec3
	WorldAABBMax []mgl32.Vec3

	Visibility []VisibilityMask
	LayerMask  []uint32
	Channels   []uint32
	Priority   []uint8

	CastShadows     []bool
	ReceiveShadows  []bool
	ReversedWinding []bool
	Culling         []CullingMode

	VisibleMask []uint8 // branch-free culling output, one byte per row (0 or 1)

	Primitives [][]Primitive

	// Len is the number of live rows; the backing arrays are sized to
	// CeilTo16(Len)+1 and any row >= Len is zero-valued padding.
	Len int
}

// NewRenderableSoa allocates a table sized for n live renderables, padded
// per spec.md §4.4.2.
func NewRenderableSoa(n int) *RenderableSoa {
	capacity := CeilTo16(n) + 1
	return &RenderableSoa{
		WorldAABBMin:    make([]mgl32.Vec3, capacity),
		WorldAABBMax:    make([]mgl32.Vec3, capacity),
		Visibility:      make([]VisibilityMask, capacity),
		LayerMask:       make([]uint32, capacity),
		Channels:        make([]uint32, capacity),
		Priority:        make([]uint8, capacity),
		CastShadows:     make([]bool, capacity),
		ReceiveShadows:  make([]bool, capacity),
		ReversedWinding: make([]bool, capacity),
		Culling:         make([]CullingMode, capacity),
		VisibleMask:     make([]uint8, capacity),
		Primitives:      make([][]Primitive, capacity),
		Len:             n,
	}
}

// Capacity returns the padded backing length (including the sentinel row).
func (s *RenderableSoa) Capacity() int {
	return len(s.WorldAABBMin)
}

// SetRow writes one renderable's data into row i.
func (s *RenderableSoa) SetRow(i int, r Renderable) {
	s.WorldAABBMin[i] = r.WorldAABB.Min
	s.WorldAABBMax[i] = r.WorldAABB.Max
	s.Visibility[i] = r.Visibility
	s.LayerMask[i] = r.LayerMask
	s.Channels[i] = r.Channels
	s.Priority[i] = r.Priority
	s.CastShadows[i] = r.CastShadows
	s.ReceiveShadows[i] = r.ReceiveShadows
	s.ReversedWinding[i] = r.ReversedWinding
	s.Culling[i] = r.Culling
	s.Primitives[i] = r.Primitives
}

// SwapRows exchanges rows i and j across every column, the primitive this
// table's partitioning step (spec.md §4.4.3) is built from: std::partition
// reorders an AoS in place by swapping whole elements, and an SoA's
// equivalent is swapping every column at the same two indices.
func (s *RenderableSoa) SwapRows(i, j int) {
	if i == j {
		return
	}
	s.WorldAABBMin[i], s.WorldAABBMin[j] = s.WorldAABBMin[j], s.WorldAABBMin[i]
	s.WorldAABBMax[i], s.WorldAABBMax[j] = s.WorldAABBMax[j], s.WorldAABBMax[i]
	s.Visibility[i], s.Visibility[j] = s.Visibility[j], s.Visibility[i]
	s.LayerMask[i], s.LayerMask[j] = s.LayerMask[j], s.LayerMask[i]
	s.Channels[i], s.Channels[j] = s.Channels[j], s.Channels[i]
	s.Priority[i], s.Priority[j] = s.Priority[j], s.Priority[i]
	s.CastShadows[i], s.CastShadows[j] = s.CastShadows[j], s.CastShadows[i]
	s.ReceiveShadows[i], s.ReceiveShadows[j] = s.ReceiveShadows[j], s.ReceiveShadows[i]
	s.ReversedWinding[i], s.ReversedWinding[j] = s.ReversedWinding[j], s.ReversedWinding[i]
	s.Culling[i], s.Culling[j] = s.Culling[j], s.Culling[i]
	s.VisibleMask[i], s.VisibleMask[j] = s.VisibleMask[j], s.VisibleMask[i]
	s.Primitives[i], s.Primitives[j] = s.Primitives[j], s.Primitives[i]
}

// PartitionRanges holds the four disjoint regions the RenderableSoa is
// partitioned into after culling (spec.md §4.4.3).
type PartitionRanges struct {
	Visible        Range // [0, endVisible)
	DirShadowCaster Range // [endVisible, endDirCasters)
	SpotShadowCaster Range // [endDirCasters, endDynCasters)
	Invisible      Range // [endDynCasters, end)
}

// LightSoa is the columnar light table: directional lights occupy the
// first DirectionalCount rows, positional (point/spot) lights follow.
// Grounded on the same scene-prep walk as RenderableSoa.
type LightSoa struct {
	Type      []LightType
	Position  []mgl32.Vec3
	Direction []mgl32.Vec3
	Color     []mgl32.Vec3
	Intensity []float32
	Radius    []float32

	SpotCosOuter    []float32
	SpotInvSinOuter []float32

	VisibleMask []uint8

	// DirectionalCount is the number of leading rows occupied by
	// directional/sun lights; froxelization only ever iterates rows
	// [DirectionalCount, Len).
	DirectionalCount int
	Len              int
}

// NewLightSoa allocates a table for n lights, padded per spec.md §4.4.2.
func NewLightSoa(n int) *LightSoa {
	capacity := CeilTo16(n) + 1
	return &LightSoa{
		Type:            make([]LightType, capacity),
		Position:        make([]mgl32.Vec3, capacity),
		Direction:       make([]mgl32.Vec3, capacity),
		Color:           make([]mgl32.Vec3, capacity),
		Intensity:       make([]float32, capacity),
		Radius:          make([]float32, capacity),
		SpotCosOuter:    make([]float32, capacity),
		SpotInvSinOuter: make([]float32, capacity),
		VisibleMask:     make([]uint8, capacity),
		Len:             n,
	}
}

// Capacity returns the padded backing length (including the sentinel row).
func (s *LightSoa) Capacity() int {
	return len(s.Type)
}

// SetRow writes one light's data into row i.
func (s *LightSoa) SetRow(i int, l Light) {
	s.Type[i] = l.Type
	s.Position[i] = l.Position
	s.Direction[i] = l.Direction
	s.Color[i] = l.Color
	s.Intensity[i] = l.Intensity
	s.Radius[i] = l.Radius
	s.SpotCosOuter[i] = l.SpotCosOuter
	s.SpotInvSinOuter[i] = l.SpotInvSinOuter
}
