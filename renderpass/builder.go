package renderpass

import (
	"sort"

	"github.com/gekko3d/luma/arena"
	"github.com/gekko3d/luma/core"
	"github.com/gekko3d/luma/jobs"
	"github.com/go-gl/mathgl/mgl32"
)

// TileSize bounds the number of renderables one command-generation job
// processes (spec.md §4.2.6, "job tiles of ≤256 renderables each").
const TileSize = 256

// PassKind selects which commands Build emits into its one command buffer
// for a renderable: color commands, depth commands, or both.
type PassKind uint8

const (
	PassKindColor PassKind = 1 << iota
	PassKindDepth
)

// Pools holds the arena.Pool-backed buffers Build recycles across calls
// instead of allocating fresh every pass: one for its internal offsets
// scratch (released back before Build returns) and one for the command
// slice it returns (the caller's to release once it's done consuming that
// pass's commands, typically at the start of the next frame's Build call
// for the same pass). Grounded on the same sync.Pool-per-buffer pattern as
// arena.Pool itself (particles_ecs.go's instBufPool).
type Pools struct {
	Offsets  *arena.Pool[int]
	Commands *arena.Pool[Command]
}

// NewPools creates a Pools with starting capacities sized for one
// TileSize-ish tile; both pools grow via fresh allocation whenever a call
// needs more than their retained capacity.
func NewPools() *Pools {
	return &Pools{
		Offsets:  arena.NewPool(func() []int { return make([]int, 0, TileSize+1) }),
		Commands: arena.NewPool(func() []Command { return make([]Command, 0, (TileSize+1)*3) }),
	}
}

// Build generates, sorts, and truncates the command stream for the
// renderables in soa[start:end] (spec.md §4.2.2). The primitive count of
// each renderable, len(soa.Primitives[start+i]), is used to
// precompute each tile's disjoint write offset via prefix-sum so tiles
// never contend (spec.md §4.2.6). isShadowPass lifts the depth-write
// exception of spec.md §4.2.2 step 4 for blended/alpha-to-coverage
// materials that are shadow casters: a shadow pass still needs their
// depth output even though a color/main pass wouldn't write it. pools may
// be nil, in which case Build falls back to plain make() for both buffers.
func Build(js *jobs.System, soa *core.RenderableSoa, start, end int, camera core.CameraInfo,
	viewInverseFrontFaces bool, kinds PassKind, isShadowPass bool, pools *Pools) ([]Command, error) {

	count := end - start
	if count <= 0 {
		return nil, nil
	}

	// Each primitive reserves at most 3 slots: two color-pass commands
	// (two-sided transparency splits into a pair; everything else fills
	// only the first and leaves the second a sentinel) plus one depth-pass
	// command. Reserving the worst case keeps tile write regions disjoint
	// without a second pass to size them exactly (spec.md §4.2.6).
	var offsets []int
	if pools != nil {
		offsets = pools.Offsets.GetLen(count + 1)
		defer pools.Offsets.Put(offsets[:0])
	} else {
		offsets = make([]int, count+1)
	}
	for i := 0; i < count; i++ {
		offsets[i+1] = offsets[i] + len(soa.Primitives[start+i])*3
	}
	total := offsets[count]

	var cmds []Command
	if pools != nil {
		cmds = pools.Commands.GetLen(total + 1) // +1 for the trailing sentinel
	} else {
		cmds = make([]Command, total+1)
	}
	for i := range cmds {
		cmds[i] = Command{Key: Sentinel}
	}

	cameraPos := camera.Position()
	forward := camera.Forward()

	err := js.ParallelChunks(count, TileSize, func(tileStart, tileCount int) error {
		for i := tileStart; i < tileStart+tileCount; i++ {
			row := start + i
			writeCursor := offsets[i]
			writeRenderable(soa, row, cameraPos, forward, viewInverseFrontFaces, kinds, isShadowPass, cmds, &writeCursor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Key < cmds[j].Key })

	cut := len(cmds)
	for i, c := range cmds {
		if c.IsSentinel() {
			cut = i
			break
		}
	}
	return cmds[:cut], nil
}

// writeRenderable emits the color and/or depth commands for one renderable's
// primitives into cmds starting at *cursor, advancing *cursor as it goes.
// Slots left unwritten keep the Sentinel key Build pre-filled so sort-and-truncate
// drops them (spec.md §4.2.7).
func writeRenderable(soa *core.RenderableSoa, row int, cameraPos, forward mgl32.Vec3,
	viewInverseFrontFaces bool, kinds PassKind, isShadowPass bool, cmds []Command, cursor *int) {

	center := soa.WorldAABBMin[row].Add(soa.WorldAABBMax[row]).Mul(0.5)
	d := center.Sub(cameraPos).Dot(forward)
	distanceBits := DistanceBits(d)

	windingFlip := viewInverseFrontFaces != soa.ReversedWinding[row]
	priority := soa.Priority[row]
	culling := resolveCulling(soa.Culling[row], windingFlip)

	for _, prim := range soa.Primitives[row] {
		mat := prim.MaterialInstance
		slot := *cursor

		if kinds&PassKindColor != 0 {
			writeColorCommands(cmds, slot, row, prim, mat, priority, distanceBits, culling)
		}
		if kinds&PassKindDepth != 0 {
			writeDepthCommand(cmds, slot+2, row, prim, mat, priority, distanceBits, culling, isShadowPass)
		}
		*cursor += 3
	}
}

// resolveCulling converts mode to the uint8 PrimitiveInfo.Culling stores
// while applying the winding-flip XOR from spec.md §4.2.2 step 3.
func resolveCulling(mode core.CullingMode, flip bool) uint8 {
	if !flip {
		return uint8(mode)
	}
	switch mode {
	case core.CullFront:
		return uint8(core.CullBack)
	case core.CullBack:
		return uint8(core.CullFront)
	default:
		return uint8(mode)
	}
}

func primInfo(row int, prim core.Primitive, culling uint8, depthWrite, colorWrite bool) PrimitiveInfo {
	return PrimitiveInfo{
		RenderableIndex: uint32(row),
		MaterialID:      prim.MaterialInstance.ID,
		Variant:         uint8(prim.MaterialInstance.Variant),
		VertexBuffer:    prim.VertexBuffer,
		IndexBuffer:     prim.IndexBuffer,
		IndexOffset:     prim.IndexOffset,
		IndexCount:      prim.IndexCount,
		Culling:         culling,
		DepthWrite:      depthWrite,
		ColorWrite:      colorWrite,
	}
}

// writeColorCommands implements spec.md §4.2.2 step 4's color branch,
// including the §4.2.4 two-sided-transparency split for blended materials.
// It writes into cmds[base] and cmds[base+1]; a slot left untouched keeps
// the Sentinel key Build pre-filled.
func writeColorCommands(cmds []Command, base int, row int, prim core.Primitive, mat core.MaterialInstance,
	priority uint8, distanceBits uint32, culling uint8) {

	if !mat.IsBlended() {
		key := ColorKey(priority, distanceBits, uint8(mat.Variant), mat.ID)
		cmds[base] = Command{Key: key, Primitive: primInfo(row, prim, culling, mat.HasDepthWrite, true)}
		return
	}

	switch mat.Transparency {
	case core.TransparencyTwoPassesTwoSides:
		// Command A draws back-faces first (cull the front ones); command B
		// draws front-faces second (cull the back ones). This mode
		// overrides the primitive's own resolved culling unconditionally
		// (spec.md §4.2.4; RenderPass.cpp: "In this mode, we override the
		// user's culling mode").
		keyA := BlendedKey(priority, uint16(prim.BlendOrder), distanceBits, false)
		cmds[base] = Command{Key: keyA, Primitive: primInfo(row, prim, uint8(core.CullFront), false, true)}

		keyB := BlendedKey(priority, uint16(prim.BlendOrder), distanceBits, true)
		cmds[base+1] = Command{Key: keyB, Primitive: primInfo(row, prim, uint8(core.CullBack), mat.HasDepthWrite, true)}

	case core.TransparencyTwoPassesOneSide:
		keyA := BlendedKey(priority, uint16(prim.BlendOrder), distanceBits, false)
		cmds[base] = Command{Key: keyA, Primitive: primInfo(row, prim, culling, true, false)}

		keyB := BlendedKey(priority, uint16(prim.BlendOrder), distanceBits, true)
		cmds[base+1] = Command{Key: keyB, Primitive: primInfo(row, prim, culling, mat.HasDepthWrite, true)}

	default: // TransparencyDefault: single command, second slot stays sentinel.
		key := BlendedKey(priority, uint16(prim.BlendOrder), distanceBits, false)
		cmds[base] = Command{Key: key, Primitive: primInfo(row, prim, culling, mat.HasDepthWrite, true)}
	}
}

// writeDepthCommand implements spec.md §4.2.2 step 4's depth branch:
// blended and alpha-to-coverage materials don't write depth, unless the
// primitive is a shadow caster in a shadow pass (isShadowPass), in which
// case it still contributes depth so the shadow map sees it.
func writeDepthCommand(cmds []Command, slot int, row int, prim core.Primitive, mat core.MaterialInstance,
	priority uint8, distanceBits uint32, culling uint8, isShadowPass bool) {

	if (mat.IsBlended() || mat.AlphaToCoverage) && !isShadowPass {
		return
	}
	key := DepthKey(priority, distanceBits, uint8(mat.Variant), mat.ID)
	cmds[slot] = Command{Key: key, Primitive: primInfo(row, prim, culling, true, false)}
}
