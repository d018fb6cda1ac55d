package froxel

import (
	"math/bits"

	"github.com/gekko3d/luma/core"
	"github.com/gekko3d/luma/jobs"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxLights bounds the number of positional (point/spot) lights one
	// frame's froxelization can track, matching the source renderer's
	// 256-bit per-froxel LightRecord (spec.md §4.1.3, "Union the
	// per-thread-group bitsets into one 256-bit LightRecord.lights").
	MaxLights = 256
	// GroupSize is the number of lights one bitset row covers.
	GroupSize = 32
	// GroupCount is the number of parallel jobs froxelization fans out
	// to, one per bitset row.
	GroupCount = MaxLights / GroupSize
)

// lightBits is the per-froxel (or per-frame spot-mask) 256-bit set, laid
// out as GroupCount rows of GroupSize bits. Row r, bit b holds light index
// r*GroupSize+b. Each parallel job owns exactly one row, so no
// synchronization is needed between jobs writing into the same froxel.
type lightBits [GroupCount]uint32

// Result is the output of one frame's froxelization: one FroxelEntry per
// froxel and the record buffer their offsets index into.
type Result struct {
	Entries []FroxelEntry
	Records *RecordBuffer
}

// FroxelizeLights assigns every positional light in lightData to every
// froxel of grid its volume overlaps, writing the result into records
// (spec.md §4.1.3). records is caller-owned — typically from
// NewRecordBufferFromPool so it can be recycled across frames — and must
// be empty (cursor 0) on entry. Lights beyond MaxLights are silently
// dropped (not by spec, but imposed by the 256-bit-per-froxel bitset this
// mirrors from the source renderer) — callers needing more must shard
// across multiple froxelization passes.
func FroxelizeLights(js *jobs.System, grid *Grid, camera core.CameraInfo, lightData *core.LightSoa, records *RecordBuffer) (Result, error) {
	count := lightData.Len - lightData.DirectionalCount
	if count > MaxLights {
		count = MaxLights
	}

	froxelBits := make([]lightBits, grid.Count())
	var spotMask lightBits

	err := js.ParallelGroups(GroupCount, func(group int) error {
		lo := group * GroupSize
		hi := lo + GroupSize
		if hi > count {
			hi = count
		}
		if lo >= hi {
			return nil
		}
		for i := lo; i < hi; i++ {
			row := lightData.DirectionalCount + i
			bit := uint32(i - lo)
			isSpot := lightData.Type[row] == core.LightSpot
			if isSpot {
				spotMask[group] |= 1 << bit
			}
			froxelizeOneLight(grid, camera, lightData, row, froxelBits, group, bit, isSpot)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	entries := compress(grid, froxelBits, spotMask, records)
	return Result{Entries: entries, Records: records}, nil
}

// froxelizeOneLight implements spec.md §4.1.3 steps 1-7 for a single
// positional light, translated from Filament's
// Froxelizer::froxelizePointAndSpotLight.
func froxelizeOneLight(grid *Grid, camera core.CameraInfo, lightData *core.LightSoa, row int,
	froxelBits []lightBits, group int, bit uint32, isSpot bool) {

	worldPos := lightData.Position[row]
	viewPos := camera.View.Mul4x1(mgl32.Vec4{worldPos.X(), worldPos.Y(), worldPos.Z(), 1}).Vec3()
	radius := lightData.Radius[row]

	if viewPos.Z()+radius < -grid.zLightFar {
		return
	}

	s := sphere4{viewPos.X(), viewPos.Y(), viewPos.Z(), radius * radius}

	znear := -camera.Near
	if c := viewPos.Z() + radius; c < znear {
		znear = c
	}
	zfar := viewPos.Z() - radius

	lnx, lny := project(grid.Proj, mgl32.Vec3{viewPos.X() - radius, viewPos.Y() - radius, znear})
	lfx, lfy := project(grid.Proj, mgl32.Vec3{viewPos.X() - radius, viewPos.Y() - radius, zfar})
	rnx, rny := project(grid.Proj, mgl32.Vec3{viewPos.X() + radius, viewPos.Y() + radius, znear})
	rfx, rfy := project(grid.Proj, mgl32.Vec3{viewPos.X() + radius, viewPos.Y() + radius, zfar})

	if lnx > rnx {
		lnx, rnx = rnx, lnx
	}
	if lny > rny {
		lny, rny = rny, lny
	}
	if lfx > rfx {
		lfx, rfx = rfx, lfx
	}
	if lfy > rfy {
		lfy, rfy = rfy, lfy
	}

	x0, y0 := grid.ClipToIndices(minf32(lnx, lfx), minf32(lny, lfy))
	z0 := grid.FindSliceZ(znear)
	x1, y1 := grid.ClipToIndices(maxf32(rnx, rfx), maxf32(rny, rfy))
	x1++
	z1 := grid.FindSliceZ(zfar)

	zcenter := grid.FindSliceZ(viewPos.Z())

	var coneAxis mgl32.Vec3
	var coneSinInverse, coneCosSquared float32
	if isSpot {
		dir := lightData.Direction[row]
		coneAxis = camera.View.Mul4x1(mgl32.Vec4{dir.X(), dir.Y(), dir.Z(), 0}).Vec3().Normalize()
		coneSinInverse = lightData.SpotInvSinOuter[row]
		coneCosSquared = lightData.SpotCosOuter[row] * lightData.SpotCosOuter[row]
	}

	for iz := z0; iz <= z1; iz++ {
		cz := s
		if iz != zcenter {
			if iz < zcenter {
				cz = spherePlaneIntersectionZ(s, grid.DistancesZ[iz+1])
			} else {
				cz = spherePlaneIntersectionZ(s, grid.DistancesZ[iz])
			}
		}

		cx, cy := project(grid.Proj, mgl32.Vec3{cz.X(), cz.Y(), cz.Z()})
		xcenter, ycenter := grid.ClipToIndices(cx, cy)

		if cz.W() <= 0 {
			continue
		}

		for iy := y0; iy <= y1; iy++ {
			cy2 := cz
			if iy != ycenter {
				var plane mgl32.Vec4
				if iy < ycenter {
					plane = grid.PlanesY[iy+1]
				} else {
					plane = grid.PlanesY[iy]
				}
				cy2 = spherePlaneIntersectionY(cz, plane.Y(), plane.Z())
			}
			if cy2.W() <= 0 {
				continue
			}

			bx := x0
			for ; bx <= xcenter; bx++ {
				if spherePlaneDistanceSquaredX(cy2, grid.PlanesX[bx].X(), grid.PlanesX[bx].Z()) > 0 {
					break
				}
			}
			ex := x1 - 1
			for ; ex > xcenter; ex-- {
				if spherePlaneDistanceSquaredX(cy2, grid.PlanesX[ex].X(), grid.PlanesX[ex].Z()) > 0 {
					break
				}
			}
			ex++

			if bx >= ex {
				continue
			}

			for ix := bx; ix < ex; ix++ {
				fi := grid.FroxelIndex(ix, iy, iz)
				intersects := true
				if isSpot {
					bs := grid.BoundingSpheres[fi]
					intersects = sphereConeIntersectionFast(
						mgl32.Vec3{bs.X(), bs.Y(), bs.Z()}, bs.W(),
						viewPos, coneAxis, coneSinInverse, coneCosSquared)
				}
				if intersects {
					froxelBits[fi][group] |= 1 << bit
				}
			}
		}
	}
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// compress performs the join phase: for each froxel, build (or reuse) a
// FroxelEntry and append its light list to the record buffer, exploiting
// the run-length optimization of spec.md §4.1.3 ("Run-length
// optimization"). Translated from Froxelizer::froxelizeAssignRecordsCompress.
func compress(grid *Grid, froxelBits []lightBits, spotMask lightBits, records *RecordBuffer) []FroxelEntry {
	count := grid.Count()
	nx := grid.NX
	entries := make([]FroxelEntry, count)

	var zero lightBits
	i := 0
	for i < count {
		b := froxelBits[i]
		if b == zero {
			entries[i] = FroxelEntry{}
			i++
			continue
		}

		entry, ok := buildEntry(b, spotMask, records)
		if !ok {
			for ; i < count; i++ {
				entries[i] = FroxelEntry{}
			}
			break
		}

		for {
			entries[i] = entry
			i++
			if i >= count {
				break
			}
			if froxelBits[i] != b && i >= nx {
				b = froxelBits[i-nx]
				entry = entries[i-nx]
			}
			if froxelBits[i] != b {
				break
			}
		}
	}
	return entries
}

// buildEntry partitions a froxel's bitset into point/spot light indices
// (points first, F-I2), reserves their slice of the record buffer, and
// returns the entry describing it. ok is false if the record buffer has
// no room left (spec.md §4.1.3's "Record-buffer-full policy").
func buildEntry(b, spotMask lightBits, records *RecordBuffer) (FroxelEntry, bool) {
	var points, spots []uint16
	for row := 0; row < GroupCount; row++ {
		word := b[row]
		for word != 0 {
			bit := bits.TrailingZeros32(word)
			word &^= 1 << uint(bit)
			lightIndex := uint16(row*GroupSize + bit)
			if spotMask[row]&(1<<uint(bit)) != 0 {
				spots = append(spots, lightIndex)
			} else {
				points = append(points, lightIndex)
			}
		}
	}

	combined := make([]uint16, 0, len(points)+len(spots))
	combined = append(combined, points...)
	combined = append(combined, spots...)

	offset, ok := records.Append(combined)
	if !ok {
		return FroxelEntry{}, false
	}

	pc := len(points)
	if pc > 255 {
		pc = 255
	}
	sc := len(spots)
	if sc > 255 {
		sc = 255
	}
	return FroxelEntry{Offset: offset, PointCount: uint8(pc), SpotCount: uint8(sc)}, true
}
