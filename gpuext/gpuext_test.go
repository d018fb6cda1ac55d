package gpuext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/luma/core"
	"github.com/gekko3d/luma/froxel"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func testCamera() core.CameraInfo {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 2, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	return core.CameraInfo{View: view, Proj: proj, CullingProj: proj, Near: 0.1, Far: 100}
}

func TestNewPerViewUibPopulatesMatricesAndCameraPosition(t *testing.T) {
	camera := testCamera()
	viewport := core.Viewport{Width: 1920, Height: 1080}
	grid := froxel.NewGrid(viewport, camera.Proj, 0.1, 100)

	uib := NewPerViewUib(camera, viewport, grid, 1, 0, 12.5)

	require.Equal(t, camera.View, uib.ViewFromWorld)
	require.InDelta(t, camera.Position().X(), uib.CameraPosition.X(), 1e-4)
	require.InDelta(t, camera.Position().Y(), uib.CameraPosition.Y(), 1e-4)
	require.InDelta(t, camera.Position().Z(), uib.CameraPosition.Z(), 1e-4)
	require.Equal(t, float32(100), uib.CameraFar)
	require.Equal(t, float32(12.5), uib.Time)
	require.Equal(t, float32(grid.NX), uib.FroxelCountXY.X())
	require.Equal(t, float32(grid.NY), uib.FroxelCountXY.Y())

	// worldFromClip should round-trip a clip-space corner back through the
	// camera's own view-projection within floating-point tolerance.
	roundTrip := uib.ClipFromWorld.Mul4(uib.WorldFromClip)
	for i := 0; i < 16; i++ {
		ident := mgl32.Ident4()
		require.InDelta(t, ident[i], roundTrip[i], 1e-3)
	}
}

func TestNewPerViewUibWithNilGridZeroesFroxelFields(t *testing.T) {
	camera := testCamera()
	viewport := core.Viewport{Width: 1920, Height: 1080}

	uib := NewPerViewUib(camera, viewport, nil, 1, 0, 0)
	require.Equal(t, mgl32.Vec2{}, uib.FroxelCountXY)
	require.Equal(t, mgl32.Vec4{}, uib.ZParams)
}

func TestNewPerRenderableUibPacksFlagsAndObjectID(t *testing.T) {
	uib := NewPerRenderableUib(mgl32.Ident4(), 0x3, 0x1, true, 42)

	require.Equal(t, uint32(42), uib.ObjectID)
	require.Equal(t, uint32(0x3), uib.FlagsChannels&0xff)
	require.Equal(t, uint32(0x1), (uib.FlagsChannels>>8)&0xff)
	require.NotZero(t, uib.FlagsChannels&(1<<16))
}

func TestNewPerRenderableUibClearsReversedWindingBitWhenFalse(t *testing.T) {
	uib := NewPerRenderableUib(mgl32.Ident4(), 0, 0, false, 0)
	require.Zero(t, uib.FlagsChannels&(1<<16))
}

func TestDumpFroxelOccupancyPNGWritesAFile(t *testing.T) {
	viewport := core.Viewport{Width: 320, Height: 180}
	camera := testCamera()
	grid := froxel.NewGrid(viewport, camera.Proj, 0.1, 100)

	entries := make([]froxel.FroxelEntry, grid.Count())
	entries[0] = froxel.FroxelEntry{PointCount: 3, SpotCount: 1}
	result := froxel.Result{Entries: entries, Records: froxel.NewRecordBuffer(64)}

	path := filepath.Join(t.TempDir(), "froxels.png")
	err := DumpFroxelOccupancyPNG(grid, result, path, 4)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
