package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestViewportValid(t *testing.T) {
	require.True(t, Viewport{Width: 1920, Height: 1080}.Valid())
	require.False(t, Viewport{Width: 0, Height: 1080}.Valid())
	require.False(t, Viewport{Width: 1920, Height: -1}.Valid())
}

func TestExtractFrustumNormalizesPlanes(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	planes := ExtractFrustum(proj.Mul4(view))

	for _, p := range planes {
		n := mgl32.Vec3{p.X(), p.Y(), p.Z()}
		require.InDelta(t, 1.0, n.Len(), 1e-3)
	}
}

func TestNewSpotPrecomputesFalloff(t *testing.T) {
	l := NewSpot(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -1, 0}, 10, mgl32.DegToRad(30))
	require.Equal(t, LightSpot, l.Type)
	require.True(t, l.IsPunctual())
	require.False(t, l.IsDirectional())
	require.Greater(t, l.SpotInvSinOuter, float32(0))
}

func TestTransformAABBAxisAligned(t *testing.T) {
	local := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	xform := mgl32.Translate3D(5, 0, 0)
	world := TransformAABB(local, xform)

	require.InDelta(t, 4, world.Min.X(), 1e-5)
	require.InDelta(t, 6, world.Max.X(), 1e-5)
}

func TestAABBBoundingSphere(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	center, radius := b.BoundingSphere()
	require.Equal(t, mgl32.Vec3{0, 0, 0}, center)
	require.InDelta(t, mgl32.Vec3{1, 1, 1}.Len(), radius, 1e-5)
}

func TestAABBUnion(t *testing.T) {
	a := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{0.5, 0.5, 0.5}}
	u := a.Union(b)
	require.Equal(t, mgl32.Vec3{-1, -1, -1}, u.Min)
	require.Equal(t, mgl32.Vec3{1, 1, 1}, u.Max)
}

func TestCeilTo16(t *testing.T) {
	cases := map[int]int{0: 0, 1: 16, 15: 16, 16: 16, 17: 32}
	for in, want := range cases {
		require.Equal(t, want, CeilTo16(in))
	}
}

func TestNewRenderableSoaPadsCapacity(t *testing.T) {
	s := NewRenderableSoa(5)
	require.Equal(t, 5, s.Len)
	require.Equal(t, 17, s.Capacity()) // ceil_to_16(5) + 1 sentinel row
}

func TestRenderableSoaSetRowRoundTrips(t *testing.T) {
	s := NewRenderableSoa(1)
	r := Renderable{
		WorldAABB: AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}},
		LayerMask: 0x1,
		Priority:  3,
		Culling:   CullBack,
	}
	s.SetRow(0, r)
	require.Equal(t, uint32(0x1), s.LayerMask[0])
	require.Equal(t, uint8(3), s.Priority[0])
	require.Equal(t, mgl32.Vec3{-1, -1, -1}, s.WorldAABBMin[0])
}

func TestNewLightSoaPadsCapacity(t *testing.T) {
	s := NewLightSoa(20)
	require.Equal(t, 20, s.Len)
	require.Equal(t, 33, s.Capacity()) // ceil_to_16(20) + 1 sentinel row
}

func TestRangeLenAndEmpty(t *testing.T) {
	r := Range{Start: 2, End: 5}
	require.Equal(t, uint32(3), r.Len())
	require.False(t, r.Empty())
	require.True(t, Range{Start: 5, End: 5}.Empty())
}
