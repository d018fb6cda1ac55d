package view

import (
	"testing"

	"github.com/gekko3d/luma"
	"github.com/gekko3d/luma/arena"
	"github.com/gekko3d/luma/backend"
	"github.com/gekko3d/luma/core"
	"github.com/gekko3d/luma/jobs"
	"github.com/gekko3d/luma/rescache"
	"github.com/gekko3d/luma/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func testView(t *testing.T) (*View, *backend.NullDriver) {
	t.Helper()
	driver := backend.NewNullDriver()
	cache := rescache.NewCache(driver, 4)
	frameArena := arena.New("frame", 1<<20)
	js := jobs.New(2)

	opts := Options{
		Viewport:             core.Viewport{Width: 320, Height: 240},
		ZLightNear:           0.1,
		ZLightFar:            100,
		RecordBufferCapacity: 1024,
		FrameLatency:         2,
		Resolution:           testOptions(),
	}
	return New(js, driver, cache, frameArena, opts, nil), driver
}

func testCamera() core.CameraInfo {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 320.0/240.0, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	return core.CameraInfo{View: view, Proj: proj, CullingProj: proj, Near: 0.1, Far: 100}
}

func testEntities() []scene.Entity {
	return []scene.Entity{
		{
			Alive:     true,
			Transform: mgl32.Ident4(),
			Renderable: &scene.EntityRenderable{
				LocalAABB:   core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}},
				Culling:     core.CullBack,
				CastShadows: true,
				Primitives: []core.Primitive{{
					IndexCount: 36,
					MaterialInstance: core.MaterialInstance{
						ID:            1,
						Blend:         core.BlendOpaque,
						HasDepthWrite: true,
					},
				}},
			},
		},
	}
}

func TestPrepareFrameProducesSortedMainCommands(t *testing.T) {
	v, _ := testView(t)
	defer v.Close()

	frame, err := v.PrepareFrame(testEntities(), testCamera(), FrameInfo{Valid: true, DenoisedFrameTimeMs: 16}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, frame.Renderables.Len)
	require.NotEmpty(t, frame.MainCommands)
	v.EndFrame()
}

func TestPrepareFrameRecyclesBuffersAcrossFrames(t *testing.T) {
	v, _ := testView(t)
	defer v.Close()

	frame1, err := v.PrepareFrame(testEntities(), testCamera(), FrameInfo{Valid: true}, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, frame1.MainCommands)
	v.EndFrame()

	// The second PrepareFrame releases frame1's record buffer and command
	// slice back into their pools before allocating this frame's; it must
	// still produce a correct, independent result rather than one
	// clobbered by the recycled storage.
	frame2, err := v.PrepareFrame(testEntities(), testCamera(), FrameInfo{Valid: true}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, frame2.Renderables.Len)
	require.NotEmpty(t, frame2.MainCommands)
	v.EndFrame()
}

func TestPrepareFrameRejectsInvalidViewport(t *testing.T) {
	driver := backend.NewNullDriver()
	cache := rescache.NewCache(driver, 4)
	frameArena := arena.New("frame", 1<<16)
	js := jobs.New(1)

	opts := Options{Viewport: core.Viewport{Width: 0, Height: 0}, Resolution: testOptions()}
	v := New(js, driver, cache, frameArena, opts, nil)
	defer v.Close()

	_, err := v.PrepareFrame(nil, testCamera(), FrameInfo{Valid: true}, nil, nil)
	require.ErrorIs(t, err, luma.ErrInvalidViewport)
}

func TestAcquireRenderTargetsReusesHandleAcrossFrames(t *testing.T) {
	v, _ := testView(t)
	defer v.Close()

	_, color1, depth1 := v.AcquireRenderTargets(1, 2)
	v.ReleaseRenderTargets(color1, depth1)
	v.EndFrame() // ages the pool by one frame; cacheMaxAgeSoft is large enough not to evict yet

	_, color2, depth2 := v.AcquireRenderTargets(1, 2)
	require.Equal(t, color1, color2)
	require.Equal(t, depth1, depth2)
}
