package scene

import "github.com/gekko3d/luma/core"

// ShadowCasterTest reports whether renderable row is a shadow caster for
// some light the caller is partitioning against. Separate predicates for
// directional and spot casters let the caller supply whatever shadow
// frustum test it's using (this package has no notion of shadow frustums
// itself, per spec.md §1's scope).
type ShadowCasterTest func(row int) bool

// Partition reorders soa.VisibleMask[0:soa.Len] rows in place into the four
// contiguous regions spec.md §4.4.3 describes: visible to the main camera,
// invisible-but-directional-shadow-casting, invisible-but-potentially-spot-
// shadow-casting, and fully invisible. Visibility is read from
// soa.VisibleMask, already populated by cull.Renderables; dirCaster/
// spotCaster classify the remainder.
//
// Grounded on std::partition's role in the original (an AoS reorder); here
// it's a stable counting-sort into the four buckets followed by an in-place
// permutation apply over core.RenderableSoa.SwapRows, since an SoA can't be
// partitioned by moving single elements the way an AoS can.
func Partition(soa *core.RenderableSoa, dirCaster, spotCaster ShadowCasterTest) core.PartitionRanges {
	n := soa.Len
	if n == 0 {
		return core.PartitionRanges{}
	}

	const (
		catVisible = iota
		catDirCaster
		catSpotCaster
		catInvisible
	)

	category := make([]uint8, n)
	var counts [4]int
	for i := 0; i < n; i++ {
		var c uint8
		switch {
		case soa.VisibleMask[i] == 1:
			c = catVisible
		case soa.CastShadows[i] && dirCaster != nil && dirCaster(i):
			c = catDirCaster
		case soa.CastShadows[i] && spotCaster != nil && spotCaster(i):
			c = catSpotCaster
		default:
			c = catInvisible
		}
		category[i] = c
		counts[c]++
	}

	var starts [4]int
	starts[0] = 0
	for k := 1; k < 4; k++ {
		starts[k] = starts[k-1] + counts[k-1]
	}

	cursor := starts
	newIndex := make([]int, n)
	for i := 0; i < n; i++ {
		c := category[i]
		newIndex[i] = cursor[c]
		cursor[c]++
	}

	applyPermutation(soa, newIndex)

	endVisible := uint32(starts[catDirCaster])
	endDirCasters := uint32(starts[catSpotCaster])
	endDynCasters := uint32(starts[catInvisible])

	return core.PartitionRanges{
		Visible:          core.Range{Start: 0, End: endVisible},
		DirShadowCaster:  core.Range{Start: endVisible, End: endDirCasters},
		SpotShadowCaster: core.Range{Start: endDirCasters, End: endDynCasters},
		Invisible:        core.Range{Start: endDynCasters, End: uint32(n)},
	}
}

// applyPermutation rearranges soa's rows in place so that the row
// originally at index i ends up at newIndex[i], via the standard
// follow-the-cycle swap algorithm (no extra O(n) row storage beyond the
// permutation array itself).
func applyPermutation(soa *core.RenderableSoa, newIndex []int) {
	for i := range newIndex {
		for newIndex[i] != i {
			j := newIndex[i]
			soa.SwapRows(i, j)
			newIndex[i], newIndex[j] = newIndex[j], newIndex[i]
		}
	}
}
