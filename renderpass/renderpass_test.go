package renderpass

import (
	"sort"
	"testing"

	"github.com/gekko3d/luma/backend"
	"github.com/gekko3d/luma/core"
	"github.com/gekko3d/luma/jobs"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestDepthKeySortsFrontToBack(t *testing.T) {
	near := DepthKey(0, DistanceBits(1), 0, 0)
	far := DepthKey(0, DistanceBits(10), 0, 0)
	require.Less(t, near, far)
}

func TestBlendedKeySortsBackToFront(t *testing.T) {
	near := BlendedKey(0, 0, DistanceBits(1), false)
	far := BlendedKey(0, 0, DistanceBits(10), false)
	require.Less(t, far, near)
}

func TestPassOrderingGroupsBlendedBeforeColorBeforeDepth(t *testing.T) {
	blended := BlendedKey(0, 0, 0, false)
	color := ColorKey(0, 0, 0, 0)
	depth := DepthKey(0, 0, 0, 0)
	require.Less(t, blended, color)
	require.Less(t, color, depth)
	require.Less(t, depth, Sentinel)
}

func TestPriorityOrdersWithinAPass(t *testing.T) {
	low := ColorKey(0, 0xFFFFFFFF, 0xFF, 0xFFFF)
	high := ColorKey(1, 0, 0, 0)
	require.Less(t, low, high)
}

func testSoaWithOneOpaqueRenderable() *core.RenderableSoa {
	soa := core.NewRenderableSoa(1)
	soa.SetRow(0, core.Renderable{
		WorldAABB: core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}},
		Priority:  0,
		Culling:   core.CullBack,
		Primitives: []core.Primitive{{
			VertexBuffer: 1,
			IndexBuffer:  2,
			IndexCount:   36,
			MaterialInstance: core.MaterialInstance{
				ID:            7,
				Blend:         core.BlendOpaque,
				HasDepthWrite: true,
			},
		}},
	})
	return soa
}

func testCamera() core.CameraInfo {
	return core.CameraInfo{
		View: mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}),
		Near: 0.1,
		Far:  100,
	}
}

func TestBuildOpaqueRenderableEmitsColorAndDepth(t *testing.T) {
	js := jobs.New(2)
	soa := testSoaWithOneOpaqueRenderable()

	cmds, err := Build(js, soa, 0, 1, testCamera(), false, PassKindColor|PassKindDepth, false, nil)
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	require.True(t, sort.SliceIsSorted(cmds, func(i, j int) bool { return cmds[i].Key < cmds[j].Key }))
	require.Equal(t, PassColor, Pass(cmds[0].Key>>passShift))
	require.Equal(t, PassDepth, Pass(cmds[1].Key>>passShift))
}

func TestBuildBlendedDefaultTransparencyDropsSecondSlot(t *testing.T) {
	js := jobs.New(1)
	soa := core.NewRenderableSoa(1)
	soa.SetRow(0, core.Renderable{
		WorldAABB: core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}},
		Culling:   core.CullBack,
		Primitives: []core.Primitive{{
			MaterialInstance: core.MaterialInstance{
				ID:           3,
				Blend:        core.BlendTransparent,
				Transparency: core.TransparencyDefault,
			},
		}},
	})

	cmds, err := Build(js, soa, 0, 1, testCamera(), false, PassKindColor, false, nil)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	require.Equal(t, PassBlended, Pass(cmds[0].Key>>passShift))
}

func TestBuildTwoSidesTransparencyEmitsBackThenFront(t *testing.T) {
	js := jobs.New(1)
	soa := core.NewRenderableSoa(1)
	soa.SetRow(0, core.Renderable{
		WorldAABB: core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}},
		Culling:   core.CullBack,
		Primitives: []core.Primitive{{
			MaterialInstance: core.MaterialInstance{
				ID:           3,
				Blend:        core.BlendTransparent,
				Transparency: core.TransparencyTwoPassesTwoSides,
			},
		}},
	})

	cmds, err := Build(js, soa, 0, 1, testCamera(), false, PassKindColor, false, nil)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	require.Equal(t, uint8(core.CullFront), cmds[0].Primitive.Culling)
	require.Equal(t, uint8(core.CullBack), cmds[1].Primitive.Culling)
}

func TestBuildTwoSidesTransparencyOverridesCullNoneBase(t *testing.T) {
	js := jobs.New(1)
	soa := core.NewRenderableSoa(1)
	soa.SetRow(0, core.Renderable{
		WorldAABB: core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}},
		Culling:   core.CullNone,
		Primitives: []core.Primitive{{
			MaterialInstance: core.MaterialInstance{
				ID:           3,
				Blend:        core.BlendTransparent,
				Transparency: core.TransparencyTwoPassesTwoSides,
			},
		}},
	})

	// A CullNone base mode must still be overridden to the hard FRONT/BACK
	// split: a winding-flip XOR of the resolved mode could not produce it,
	// since flipping CullNone is a no-op.
	cmds, err := Build(js, soa, 0, 1, testCamera(), false, PassKindColor, false, nil)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	require.Equal(t, uint8(core.CullFront), cmds[0].Primitive.Culling)
	require.Equal(t, uint8(core.CullBack), cmds[1].Primitive.Culling)
}

func TestBuildShadowPassKeepsDepthForBlendedMaterial(t *testing.T) {
	js := jobs.New(1)
	soa := core.NewRenderableSoa(1)
	soa.SetRow(0, core.Renderable{
		WorldAABB: core.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}},
		Culling:   core.CullBack,
		Primitives: []core.Primitive{{
			MaterialInstance: core.MaterialInstance{
				ID:           3,
				Blend:        core.BlendTransparent,
				Transparency: core.TransparencyDefault,
			},
		}},
	})

	mainCmds, err := Build(js, soa, 0, 1, testCamera(), false, PassKindDepth, false, nil)
	require.NoError(t, err)
	require.Empty(t, mainCmds, "a non-shadow pass must drop a blended material's depth command")

	shadowCmds, err := Build(js, soa, 0, 1, testCamera(), false, PassKindDepth, true, nil)
	require.NoError(t, err)
	require.Len(t, shadowCmds, 1, "a shadow pass must keep depth output for a blended shadow caster")
	require.Equal(t, PassDepth, Pass(shadowCmds[0].Key>>passShift))
}

func TestExecuteIssuesOneDrawPerCommand(t *testing.T) {
	driver := backend.NewNullDriver()
	uboHandle := driver.CreateBufferObject(backend.BufferUsageUniform, 256)

	cmds := []Command{
		{Key: ColorKey(0, 0, 0, 1), Primitive: PrimitiveInfo{RenderableIndex: 0, MaterialID: 1, IndexCount: 3}},
		{Key: ColorKey(0, 0, 0, 2), Primitive: PrimitiveInfo{RenderableIndex: 1, MaterialID: 2, IndexCount: 6}},
	}

	Execute(driver, fakeSelector{handle: uboHandle, stride: 64}, cmds)
	require.Len(t, driver.Draws, 2)
	require.EqualValues(t, 3, driver.Draws[0].IndexCount)
	require.EqualValues(t, 6, driver.Draws[1].IndexCount)
}

type fakeSelector struct {
	handle backend.BufferHandle
	stride int
}

func (f fakeSelector) Pipeline(materialID uint32, variant uint8) backend.PipelineHandle {
	return backend.PipelineHandle(materialID)
}

func (f fakeSelector) PerRenderableUbo() (backend.BufferHandle, int) {
	return f.handle, f.stride
}
