// Package view coordinates one frame's worth of preparation for a single
// camera view: arena reset, scene preparation, culling, froxelization, and
// render-pass command generation, in the order spec.md §2's data-flow row
// lays out ("View → reset arena → scene.prepare → parallel{cullRenderables,
// cullLights} → froxelize → appendCommands → sort → execute via backend").
// Grounded on Filament's FView (details/View.{h,cpp}), generalized from its
// single hard-coded pipeline into the same steps wired through this
// module's own froxel/renderpass/scene/cull packages.
package view

import (
	"errors"
	"math"

	"github.com/gekko3d/luma"
	"github.com/gekko3d/luma/arena"
	"github.com/gekko3d/luma/backend"
	"github.com/gekko3d/luma/core"
	"github.com/gekko3d/luma/cull"
	"github.com/gekko3d/luma/froxel"
	"github.com/gekko3d/luma/jobs"
	"github.com/gekko3d/luma/renderpass"
	"github.com/gekko3d/luma/rescache"
	"github.com/gekko3d/luma/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrFrameSkipped is returned from PrepareFrame when FrameSkipper determined
// the GPU hasn't caught up yet; the caller must not generate commands or
// present this frame (spec.md §5, "Backpressure").
var ErrFrameSkipped = errors.New("luma/view: frame skipped, gpu behind")

// Options configures one View at construction time.
type Options struct {
	Viewport              core.Viewport
	ActiveLayerMask       uint32
	ViewInverseFrontFaces bool

	ZLightNear, ZLightFar float32
	RecordBufferCapacity  int

	FrameLatency int
	Resolution   DynamicResolutionOptions
}

// PreparedFrame is everything View.PrepareFrame computed for one frame:
// the culled/partitioned SoAs, the froxel result, and the sorted command
// stream for the main (camera-visible) pass.
type PreparedFrame struct {
	Renderables *core.RenderableSoa
	Lights      *core.LightSoa
	Partition   core.PartitionRanges
	Froxel      froxel.Result
	Grid        *froxel.Grid

	MainCommands []renderpass.Command

	ResolutionScale mgl32.Vec2
}

// View drives one camera's worth of per-frame preparation. Not safe for
// concurrent use: spec.md §5 restricts the resource cache and the frame
// arena to the single thread preparing this view.
type View struct {
	js     *jobs.System
	driver backend.DriverAPI
	cache  *rescache.Cache
	arena  *arena.Arena
	logger luma.Logger

	skipper    *FrameSkipper
	resolution *resolutionController

	recordPool   *arena.Pool[uint16]
	cmdPools     *renderpass.Pools
	lastRecords  *froxel.RecordBuffer
	lastMainCmds []renderpass.Command

	opts Options
}

// New creates a View. frameArena is reset at the start of every
// PrepareFrame call; it's owned by the caller so multiple views can share
// one arena pool or each get their own, matching spec.md §5's "per-render-
// pass arena is owned by the view."
func New(js *jobs.System, driver backend.DriverAPI, cache *rescache.Cache, frameArena *arena.Arena,
	opts Options, logger luma.Logger) *View {

	if logger == nil {
		logger = luma.NewNopLogger()
	}
	return &View{
		js:         js,
		driver:     driver,
		cache:      cache,
		arena:      frameArena,
		logger:     logger,
		skipper:    NewFrameSkipper(driver, opts.FrameLatency),
		resolution: newResolutionController(opts.Resolution, opts.Viewport),
		recordPool: arena.NewPool(func() []uint16 { return make([]uint16, 0, opts.RecordBufferCapacity) }),
		cmdPools:   renderpass.NewPools(),
		opts:       opts,
	}
}

// Close releases the view's outstanding backend sync fences.
func (v *View) Close() {
	v.skipper.Close()
}

// PrepareFrame runs one frame's scene preparation, culling, froxelization,
// and main-pass command generation for camera. entities is the live scene
// entity list; dirCaster/spotCaster classify the invisible remainder for
// shadow-pass partitioning (spec.md §4.4.3); frameInfo drives the dynamic-
// resolution controller (spec.md §4.4.4).
//
// Returns ErrFrameSkipped if the backend is still catching up on an older
// frame (spec.md §5); the caller must not call EndFrame in that case.
func (v *View) PrepareFrame(entities []scene.Entity, camera core.CameraInfo, frameInfo FrameInfo,
	dirCaster, spotCaster scene.ShadowCasterTest) (*PreparedFrame, error) {

	if !v.opts.Viewport.Valid() || !(camera.Far > camera.Near) {
		return nil, luma.ErrInvalidViewport
	}
	for _, m := range camera.Proj {
		if math.IsNaN(float64(m)) || math.IsInf(float64(m), 0) {
			return nil, luma.ErrInvalidViewport
		}
	}
	if !v.skipper.BeginFrame() {
		return nil, ErrFrameSkipped
	}

	v.arena.Reset()
	scale := v.resolution.update(frameInfo)

	renderableSoa, lightSoa := scene.Prepare(entities)

	planes := core.ExtractFrustum(camera.CullingProj.Mul4(camera.View))

	err := v.js.Dispatch([]func() error{
		func() error {
			cull.Renderables(renderableSoa, 0, renderableSoa.Len, planes)
			return nil
		},
		func() error {
			cull.Lights(lightSoa, lightSoa.DirectionalCount, lightSoa.Len, planes)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	partition := scene.Partition(renderableSoa, dirCaster, spotCaster)

	// Recycle last frame's record buffer and main command slice now that
	// this frame's scene preparation is past the point anything could still
	// be reading them — mirrors v.arena.Reset() above, just pool-backed
	// instead of bump-allocated.
	if v.lastRecords != nil {
		v.lastRecords.Release(v.recordPool)
	}
	if v.lastMainCmds != nil {
		v.cmdPools.Commands.Put(v.lastMainCmds[:0])
	}

	grid := froxel.NewGrid(v.opts.Viewport, camera.Proj, v.opts.ZLightNear, v.opts.ZLightFar)
	records := froxel.NewRecordBufferFromPool(v.recordPool, v.opts.RecordBufferCapacity)
	froxelResult, err := froxel.FroxelizeLights(v.js, grid, camera, lightSoa, records)
	if err != nil {
		return nil, err
	}
	v.lastRecords = records

	mainCmds, err := v.BuildPass(renderableSoa, int(partition.Visible.Start), int(partition.Visible.End),
		camera, renderpass.PassKindColor|renderpass.PassKindDepth, false)
	if err != nil {
		return nil, err
	}
	v.lastMainCmds = mainCmds

	return &PreparedFrame{
		Renderables:     renderableSoa,
		Lights:          lightSoa,
		Partition:       partition,
		Froxel:          froxelResult,
		Grid:            grid,
		MainCommands:    mainCmds,
		ResolutionScale: scale,
	}, nil
}

// BuildPass generates and sorts a command stream for renderableSoa[start:end]
// against camera. Exposed separately from PrepareFrame so a caller can
// drive additional passes — directional/spot shadow maps — over the same
// RenderableSoa with a light-space camera, which is the "dispatches
// shadow/main passes" half of the view coordinator's job (spec.md §2 row
// G) that this package doesn't otherwise have the shadow-frustum machinery
// to do on its own. isShadowPass must be true when driving a shadow pass
// over Partition's DirShadowCaster/SpotShadowCaster ranges, so blended and
// alpha-to-coverage shadow casters still contribute depth (spec.md §4.2.2
// step 4's exception).
func (v *View) BuildPass(renderableSoa *core.RenderableSoa, start, end int, camera core.CameraInfo,
	kinds renderpass.PassKind, isShadowPass bool) ([]renderpass.Command, error) {

	return renderpass.Build(v.js, renderableSoa, start, end, camera, v.opts.ViewInverseFrontFaces, kinds,
		isShadowPass, v.cmdPools)
}

// Execute issues backend draw calls for cmds and must be followed by
// EndFrame once the caller has submitted this frame's backend commands.
func (v *View) Execute(sel renderpass.PipelineSelector, cmds []renderpass.Command) {
	renderpass.Execute(v.driver, sel, cmds)
}

// EndFrame stamps this frame's completion fence and runs one resource-cache
// GC pass over last frame's released textures (spec.md §5's cache being
// driven from the view thread). Must not be called after PrepareFrame
// returned ErrFrameSkipped — call SkipFrame instead so the skipped-frame
// purge rule runs.
func (v *View) EndFrame() {
	v.skipper.EndFrame()
	v.cache.Gc(false, v.logger)
}

// SkipFrame runs the resource cache's skipped-frame eviction pass, for the
// frame a PrepareFrame call already rejected via ErrFrameSkipped.
func (v *View) SkipFrame() {
	v.cache.Gc(true, v.logger)
}

// scaledViewport returns the viewport dimensions after the dynamic-
// resolution scale currently in effect.
func (v *View) scaledViewport() (w, h int) {
	scale := v.resolution.scale
	w = int(float32(v.opts.Viewport.Width) * scale.X())
	h = int(float32(v.opts.Viewport.Height) * scale.Y())
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// AcquireRenderTargets pools a color+depth texture pair sized to this
// view's current (dynamic-resolution-scaled) resolution via the shared
// rescache.Cache, then asks the backend for a render target over them —
// the per-frame resource-allocation step Filament's FView drives through
// its PostProcessManager/RenderPassBuilder before each pass.
func (v *View) AcquireRenderTargets(colorFormat, depthFormat backend.TextureFormat) (
	target backend.RenderTargetHandle, color, depth backend.TextureHandle) {

	w, h := v.scaledViewport()
	colorKey := rescache.TextureKey{
		Target: backend.Texture2D, Levels: 1, Format: colorFormat, Samples: 1,
		Width: w, Height: h, Depth: 1, Usage: backend.UsageColorAttachment | backend.UsageSampled,
	}
	depthKey := rescache.TextureKey{
		Target: backend.Texture2D, Levels: 1, Format: depthFormat, Samples: 1,
		Width: w, Height: h, Depth: 1, Usage: backend.UsageDepthStencilAttachment,
	}

	color = v.cache.CreateTexture(colorKey)
	depth = v.cache.CreateTexture(depthKey)
	target = v.driver.CreateRenderTarget(color, depth)
	return target, color, depth
}

// ReleaseRenderTargets returns color/depth to the resource cache's free
// pool; they're actually destroyed only once Gc (run from EndFrame) ages
// them out.
func (v *View) ReleaseRenderTargets(color, depth backend.TextureHandle) {
	v.cache.DestroyTexture(color)
	v.cache.DestroyTexture(depth)
}
