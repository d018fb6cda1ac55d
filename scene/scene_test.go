package scene

import (
	"testing"

	"github.com/gekko3d/luma/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func renderableEntity(aabb core.AABB, transform mgl32.Mat4) Entity {
	return Entity{
		Alive:     true,
		Transform: transform,
		Renderable: &EntityRenderable{
			LocalAABB:   aabb,
			CastShadows: true,
			Culling:     core.CullBack,
			Primitives:  []core.Primitive{{IndexCount: 3}},
		},
	}
}

func directionalEntity(intensity float32) Entity {
	return Entity{
		Alive: true,
		Light: &core.Light{Type: core.LightDirectional, Intensity: intensity},
	}
}

func pointEntity(pos mgl32.Vec3) Entity {
	return Entity{
		Alive: true,
		Light: &core.Light{Type: core.LightPoint, Position: pos, Radius: 5},
	}
}

func TestPrepareSkipsDeadEntities(t *testing.T) {
	dead := renderableEntity(core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}, mgl32.Ident4())
	dead.Alive = false

	rsoa, lsoa := Prepare([]Entity{dead})
	require.Equal(t, 0, rsoa.Len)
	require.Equal(t, 0, lsoa.Len)
}

func TestPrepareComputesWorldAABB(t *testing.T) {
	e := renderableEntity(
		core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}},
		mgl32.Translate3D(10, 0, 0),
	)

	rsoa, _ := Prepare([]Entity{e})
	require.Equal(t, 1, rsoa.Len)
	require.InDelta(t, 9, rsoa.WorldAABBMin[0].X(), 1e-5)
	require.InDelta(t, 11, rsoa.WorldAABBMax[0].X(), 1e-5)
}

func TestPrepareFlagsReversedWindingOnNegativeDeterminant(t *testing.T) {
	mirrored := mgl32.Scale3D(-1, 1, 1)
	e := renderableEntity(core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}, mirrored)

	rsoa, _ := Prepare([]Entity{e})
	require.True(t, rsoa.ReversedWinding[0])
}

func TestPrepareChoosesHighestIntensityDirectionalForRowZero(t *testing.T) {
	dim := directionalEntity(1.0)
	bright := directionalEntity(50.0)

	_, lsoa := Prepare([]Entity{dim, bright})
	require.Equal(t, 2, lsoa.DirectionalCount)
	require.InDelta(t, 50.0, lsoa.Intensity[0], 1e-5)
	require.InDelta(t, 1.0, lsoa.Intensity[1], 1e-5)
}

func TestPreparePlacesPositionalLightsAfterDirectionals(t *testing.T) {
	sun := directionalEntity(10)
	point := pointEntity(mgl32.Vec3{1, 2, 3})

	_, lsoa := Prepare([]Entity{sun, point})
	require.Equal(t, 1, lsoa.DirectionalCount)
	require.Equal(t, core.LightPoint, lsoa.Type[1])
	require.Equal(t, mgl32.Vec3{1, 2, 3}, lsoa.Position[1])
}

func TestPartitionGroupsRowsIntoFourRanges(t *testing.T) {
	soa := core.NewRenderableSoa(4)
	for i := 0; i < 4; i++ {
		soa.SetRow(i, core.Renderable{CastShadows: true})
	}
	// Row 0: visible. Row 1: dir caster. Row 2: spot caster. Row 3: fully invisible.
	soa.VisibleMask[0] = 1

	dirCaster := func(row int) bool { return row == 1 }
	spotCaster := func(row int) bool { return row == 2 }

	ranges := Partition(soa, dirCaster, spotCaster)
	require.Equal(t, core.Range{Start: 0, End: 1}, ranges.Visible)
	require.Equal(t, core.Range{Start: 1, End: 2}, ranges.DirShadowCaster)
	require.Equal(t, core.Range{Start: 2, End: 3}, ranges.SpotShadowCaster)
	require.Equal(t, core.Range{Start: 3, End: 4}, ranges.Invisible)
}

func TestPartitionEmptySoaReturnsZeroRanges(t *testing.T) {
	soa := core.NewRenderableSoa(0)
	ranges := Partition(soa, nil, nil)
	require.Equal(t, core.PartitionRanges{}, ranges)
}
