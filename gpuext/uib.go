// Package gpuext holds the std140-packed uniform-block structs the
// backend uploads once per view and once per renderable, and a debug
// helper for dumping froxel occupancy to disk. Grounded on Filament's
// PerViewUniforms.{h,cpp} and PerRenderableData.h
// (original_source/filament/src) for field order, and on the teacher's
// gpu_operations.go (toBufferBytes/readUniformsBytes) for the
// reflect-driven upload pattern this package's byte layout feeds.
package gpuext

import (
	"github.com/gekko3d/luma/core"
	"github.com/gekko3d/luma/froxel"
	"github.com/go-gl/mathgl/mgl32"
)

// std140 lays out vec3/mat3 members with the same stride as their vec4/mat4
// equivalents and aligns anything that follows them to a 16-byte boundary.
// Go has no alignas, so every member that std140 widens or pads is declared
// at its padded size directly instead of relying on field ordering alone.

// PerViewUib is the per-view uniform block bound once per render pass,
// matching spec.md §6's field list and order exactly. mat4/vec4 members
// need no extra padding; each vec3 member is followed by a scalar
// (CameraFar, FogDensity) that fills its fourth lane, and scalar runs that
// end short of a 16-byte boundary carry an explicit _pad field.
type PerViewUib struct {
	ViewFromWorld mgl32.Mat4
	WorldFromView mgl32.Mat4
	ClipFromView  mgl32.Mat4
	ViewFromClip  mgl32.Mat4
	ClipFromWorld mgl32.Mat4
	WorldFromClip mgl32.Mat4

	CameraPosition mgl32.Vec3
	CameraFar      float32

	OneOverFarMinusNear  float32
	NearOverFarMinusNear float32
	Exposure             float32
	Ev100                float32

	Resolution mgl32.Vec4

	Origin mgl32.Vec2
	Time   float32
	_pad0  float32

	UserTime mgl32.Vec4

	FogStart             float32
	FogMaxOpacity        float32
	FogHeight            float32
	FogHeightFalloff     float32
	FogColor             mgl32.Vec3
	FogDensity           float32
	FogInscatteringStart float32
	FogInscatteringSize  float32
	FogColorFromIbl      float32
	_pad1                float32

	AoSamplingQualityAndEdgeDistance float32
	_pad2                            [3]float32

	FroxelCountXY mgl32.Vec2
	_pad3         mgl32.Vec2

	ZParams mgl32.Vec4

	// FParams packs {froxel dimension in pixels, Nx, Ny} as the Froxelizer's
	// shader-side getFroxelParams does; the 4th uvec3 lane is implicit
	// std140 padding (uvec3 aligns and sizes as vec4).
	FParams [3]uint32
	_pad4   uint32
}

// NewPerViewUib packs the per-frame camera/fog/froxel parameters a view has
// already computed into the std140 block the backend uploads before a pass.
// exposure/ev100 are caller-supplied parameters and the fog fields are left
// zero for the caller to set on the returned value, because neither has
// a home in this module's scope (spec.md's Non-goals exclude exposure and
// fog/IBL precomputation); callers that don't use them may leave them zero.
func NewPerViewUib(camera core.CameraInfo, resolution core.Viewport, grid *froxel.Grid,
	exposure, ev100, timeSeconds float32) PerViewUib {

	viewFromWorld := camera.View
	worldFromView := viewFromWorld.Inv()
	clipFromView := camera.Proj
	viewFromClip := clipFromView.Inv()
	clipFromWorld := clipFromView.Mul4(viewFromWorld)
	worldFromClip := clipFromWorld.Inv()

	cameraPosWorld := camera.Position()

	var zParams mgl32.Vec4
	var fParams [3]uint32
	if grid != nil {
		log2ZLightFar, invLinearizer := grid.ZParams()
		zParams = mgl32.Vec4{log2ZLightFar, invLinearizer, float32(grid.NZ), 0}
		fParams = [3]uint32{uint32(grid.Dimension), uint32(grid.NX), uint32(grid.NY)}
	}

	return PerViewUib{
		ViewFromWorld: viewFromWorld,
		WorldFromView: worldFromView,
		ClipFromView:  clipFromView,
		ViewFromClip:  viewFromClip,
		ClipFromWorld: clipFromWorld,
		WorldFromClip: worldFromClip,

		CameraPosition: cameraPosWorld,
		CameraFar:      camera.Far,

		OneOverFarMinusNear:  1 / (camera.Far - camera.Near),
		NearOverFarMinusNear: camera.Near / (camera.Far - camera.Near),
		Exposure:             exposure,
		Ev100:                ev100,

		Resolution: mgl32.Vec4{
			float32(resolution.Width), float32(resolution.Height),
			1 / float32(resolution.Width), 1 / float32(resolution.Height),
		},

		Origin: mgl32.Vec2{float32(resolution.Left), float32(resolution.Bottom)},
		Time:   timeSeconds,

		FroxelCountXY: froxelCountXY(grid),
		ZParams:       zParams,
		FParams:       fParams,
	}
}

func froxelCountXY(grid *froxel.Grid) mgl32.Vec2 {
	if grid == nil {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{float32(grid.NX), float32(grid.NY)}
}

// PerRenderableUib is the per-draw uniform block, one instance per
// renderable row, matching spec.md §6. WorldFromModelNormal is declared as
// mat4 rather than mat3: std140 pads every column of a mat3 to a vec4 and
// every row to 3 columns, which is exactly the storage mat4 already has, so
// reusing mgl32.Mat4 avoids a bespoke padded-mat3 type for the same bytes a
// shader's mat3 reads back.
type PerRenderableUib struct {
	WorldFromModel       mgl32.Mat4
	WorldFromModelNormal mgl32.Mat4

	FlagsChannels    uint32
	MorphTargetCount uint32
	ObjectID         uint32
	UserData         float32
}

// NewPerRenderableUib packs one renderable row's transform and channel bits
// into the per-draw block renderpass.Execute binds at
// renderableIndex*sizeof(PerRenderableUib) (spec.md §4.2's bind step).
func NewPerRenderableUib(worldFromModel mgl32.Mat4, channels, layerMask uint32,
	reversedWinding bool, objectID uint32) PerRenderableUib {

	normalMat3 := worldFromModel.Inv().Transpose()
	flags := channels&0xff | (layerMask&0xff)<<8
	if reversedWinding {
		flags |= 1 << 16
	}
	return PerRenderableUib{
		WorldFromModel:       worldFromModel,
		WorldFromModelNormal: mat3To4(normalMat3),
		FlagsChannels:        flags,
		ObjectID:             objectID,
	}
}

// mat3To4 embeds a mat3's columns into a mat4's upper-left 3x3, leaving the
// last row/column as std140's implicit per-column padding would: this is
// PerRenderableUib.WorldFromModelNormal's storage, not a 3D transform, so
// the fourth row/column is never read back.
func mat3To4(m mgl32.Mat4) mgl32.Mat4 {
	return mgl32.Mat4{
		m[0], m[1], m[2], 0,
		m[4], m[5], m[6], 0,
		m[8], m[9], m[10], 0,
		0, 0, 0, 1,
	}
}

// RenderableUibStride is the array stride of PerRenderableUib within the
// per-renderable UBO range: std140 rounds a struct's size up to a multiple
// of 16, and PerRenderableUib is already a multiple of 16 bytes (two mat4s
// plus one vec4's worth of scalars), so the stride equals its Go size.
const RenderableUibStride = 2*16*4 + 16
