package cull

import (
	"testing"

	"github.com/gekko3d/luma/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func testPlanes() core.FrustumPlanes {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return core.ExtractFrustum(proj.Mul4(view))
}

func TestAABBVisibleInsideFrustum(t *testing.T) {
	planes := testPlanes()
	center := mgl32.Vec3{0, 0, -10}
	extent := mgl32.Vec3{1, 1, 1}
	require.True(t, AABBVisible(center, extent, planes))
}

func TestAABBVisibleOutsideLeft(t *testing.T) {
	planes := testPlanes()
	center := mgl32.Vec3{-18, 0, -8}
	extent := mgl32.Vec3{2, 1, 1}
	require.False(t, AABBVisible(center, extent, planes))
}

func TestAABBVisibleBehindNear(t *testing.T) {
	planes := testPlanes()
	center := mgl32.Vec3{0, 0, 3.5}
	extent := mgl32.Vec3{1, 1, 1}
	require.False(t, AABBVisible(center, extent, planes))
}

func TestSphereVisibleIntersectingPlane(t *testing.T) {
	planes := testPlanes()
	// Left edge at z=-10 is roughly at x=-10 (tan(45)*10); a sphere
	// straddling it should still test visible.
	require.True(t, SphereVisible(mgl32.Vec3{-10, 0, -10}, 2, planes))
}

func TestRenderablesWritesMaskPerRow(t *testing.T) {
	soa := core.NewRenderableSoa(10)
	soa.WorldAABBMin[0] = mgl32.Vec3{-1, -1, -11}
	soa.WorldAABBMax[0] = mgl32.Vec3{1, 1, -9}
	soa.WorldAABBMin[1] = mgl32.Vec3{-1, -1, 2}
	soa.WorldAABBMax[1] = mgl32.Vec3{1, 1, 3}

	Renderables(soa, 0, soa.Len, testPlanes())

	require.EqualValues(t, 1, soa.VisibleMask[0])
	require.EqualValues(t, 0, soa.VisibleMask[1])
}

func TestLightsWritesMaskPerPositionalRow(t *testing.T) {
	soa := core.NewLightSoa(4)
	soa.DirectionalCount = 1
	soa.Position[1] = mgl32.Vec3{0, 0, -10}
	soa.Radius[1] = 1
	soa.Position[2] = mgl32.Vec3{0, 0, 200}
	soa.Radius[2] = 1

	Lights(soa, soa.DirectionalCount, soa.Len, testPlanes())

	require.EqualValues(t, 1, soa.VisibleMask[1])
	require.EqualValues(t, 0, soa.VisibleMask[2])
}
