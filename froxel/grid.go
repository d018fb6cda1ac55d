// Package froxel partitions a camera's view frustum into a 3D grid of
// "froxels" (frustum-voxels) and, per frame, assigns each analytic light to
// every froxel its volume overlaps (spec.md §4.1). Grounded on Filament's
// Froxelizer.{h,cpp} (original_source/filament/src), restructured around
// Go slices and the jobs package's worker pool instead of Filament's
// JobSystem and LinearAllocator arena.
package froxel

import (
	"math"

	"github.com/gekko3d/luma/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SliceCount is Nz, the number of logarithmic Z slices (spec.md §3.1
	// example value, FROXEL_SLICE_COUNT).
	SliceCount = 16
	// BufferMax bounds Nx*Ny*Nz (spec.md §3.1 example value,
	// FROXEL_BUFFER_MAX).
	BufferMax = 8192
)

// Grid holds the froxel geometry derived from a viewport and projection:
// plane arrays and per-froxel bounding spheres. It depends only on the
// viewport, the projection and the light near/far planes; View.PrepareFrame
// builds a new Grid on every frame and does not reuse one across frames.
type Grid struct {
	Viewport  core.Viewport
	Dimension int // froxel side length in pixels
	NX, NY, NZ int

	// Proj is the projection matrix the grid was built from; froxelization
	// reuses it to project light bounding-box corners to clip space.
	Proj mgl32.Mat4

	// PlanesX[i] and PlanesY[i] are normals (through the camera origin)
	// of the i-th froxel boundary plane, in view space. Lengths NX+1,
	// NY+1 respectively.
	PlanesX []mgl32.Vec4
	PlanesY []mgl32.Vec4
	// DistancesZ[i] is the view-space distance (positive) of the i-th Z
	// slice boundary. Length NZ+1. F-I3.
	DistancesZ []float32

	// BoundingSpheres[fi] is the view-space bounding sphere (center,
	// radius) of froxel fi = ix + iy*NX + iz*NX*NY. F-I5.
	BoundingSpheres []mgl32.Vec4

	clipToFroxelX, clipToFroxelY float32
	linearizer                   float32
	log2ZLightFar                float32
	zLightNear, zLightFar        float32
}

// ComputeLayout derives the square froxel dimension and grid counts from a
// viewport, following spec.md §4.1.2 step 1 / Open Question resolution 1
// (square froxels, x-major sizing only — no rectangular 32x16 mode).
func ComputeLayout(viewport core.Viewport, sliceCount int) (dimension, nx, ny, nz int) {
	planeCount := BufferMax / sliceCount
	w := float64(viewport.Width)
	h := float64(viewport.Height)

	fx := math.Sqrt(float64(planeCount) * w / h)
	fy := math.Sqrt(float64(planeCount) * h / w)

	sizeX := int(math.Ceil(w / fx))
	sizeY := int(math.Ceil(h / fy))
	dimension = sizeX
	if sizeY > dimension {
		dimension = sizeY
	}
	if dimension < 1 {
		dimension = 1
	}

	nx = int(math.Ceil(w / float64(dimension)))
	ny = int(math.Ceil(h / float64(dimension)))
	nz = sliceCount
	return
}

// NewGrid builds the froxel geometry for a viewport/projection pair,
// including the Z-slice distances (F-I3), the X/Y boundary planes, and the
// per-froxel bounding spheres (spec.md §4.1.2).
func NewGrid(viewport core.Viewport, proj mgl32.Mat4, zLightNear, zLightFar float32) *Grid {
	dim, nx, ny, nz := ComputeLayout(viewport, SliceCount)

	g := &Grid{
		Viewport:   viewport,
		Dimension:  dim,
		NX:         nx,
		NY:         ny,
		NZ:         nz,
		Proj:       proj,
		zLightNear: zLightNear,
		zLightFar:  zLightFar,
	}
	g.clipToFroxelX = (0.5 * float32(viewport.Width)) / float32(dim)
	g.clipToFroxelY = (0.5 * float32(viewport.Height)) / float32(dim)

	g.computeDistancesZ()
	g.computePlanesXY(core.InverseProjection(proj))
	g.computeBoundingSpheres()
	return g
}

// FroxelIndex maps a 3D froxel coordinate to its flat index, matching
// Filament's getFroxelIndex (x-major, then y, then z).
func (g *Grid) FroxelIndex(ix, iy, iz int) int {
	return ix + iy*g.NX + iz*g.NX*g.NY
}

// Count returns Nx*Ny*Nz.
func (g *Grid) Count() int {
	return g.NX * g.NY * g.NZ
}

// computeDistancesZ fills DistancesZ per F-I3:
// z_i = zLightFar * 2^((i-Nz)*log2(zLightFar/zLightNear)/(Nz-1)).
func (g *Grid) computeDistancesZ() {
	g.DistancesZ = make([]float32, g.NZ+1)
	g.DistancesZ[0] = 0

	linearizer := float32(math.Log2(float64(g.zLightFar/g.zLightNear))) / float32(g.NZ-1)
	for i := 1; i <= g.NZ; i++ {
		exp := float64((i - g.NZ)) * float64(linearizer)
		g.DistancesZ[i] = g.zLightFar * float32(math.Exp2(exp))
	}

	g.linearizer = 1 / linearizer
	g.log2ZLightFar = float32(math.Log2(float64(g.zLightFar)))
}

// computePlanesXY unprojects each clip-space froxel boundary line to view
// space and stores the plane normal through the origin, per spec.md
// §4.1.2 step 2.
func (g *Grid) computePlanesXY(invProj mgl32.Mat4) {
	froxelWidthClip := (2 * float32(g.Dimension)) / float32(g.Viewport.Width)
	froxelHeightClip := (2 * float32(g.Dimension)) / float32(g.Viewport.Height)

	g.PlanesX = make([]mgl32.Vec4, g.NX+1)
	for i := 0; i <= g.NX; i++ {
		x := float32(i)*froxelWidthClip - 1
		p0 := unproject(invProj, mgl32.Vec4{x, -1, -1, 1})
		p1 := unproject(invProj, mgl32.Vec4{x, 1, -1, 1})
		n := p1.Cross(p0).Normalize()
		g.PlanesX[i] = mgl32.Vec4{n.X(), n.Y(), n.Z(), 0}
	}

	g.PlanesY = make([]mgl32.Vec4, g.NY+1)
	for i := 0; i <= g.NY; i++ {
		y := float32(i)*froxelHeightClip - 1
		p0 := unproject(invProj, mgl32.Vec4{-1, y, -1, 1})
		p1 := unproject(invProj, mgl32.Vec4{1, y, -1, 1})
		n := p1.Cross(p0).Normalize()
		g.PlanesY[i] = mgl32.Vec4{n.X(), n.Y(), n.Z(), 0}
	}
}

func unproject(invProj mgl32.Mat4, clip mgl32.Vec4) mgl32.Vec3 {
	v := invProj.Mul4x1(clip)
	return v.Vec3()
}

// computeBoundingSpheres fills BoundingSpheres per F-I5: for each froxel,
// intersect its 6 planes to find the view-space AABB corners, then store
// the sphere enclosing them. Translated directly from Froxelizer.cpp's
// nested iz/ix/iy loop, which exploits separability of the X and Y planes
// by computing per-slice X extents once and reusing them across every Y
// row.
func (g *Grid) computeBoundingSpheres() {
	g.BoundingSpheres = make([]mgl32.Vec4, g.Count())
	minMaxX := make([][2]float32, g.NX)

	fi := 0
	for iz := 0; iz < g.NZ; iz++ {
		nearD := g.DistancesZ[iz]
		farD := g.DistancesZ[iz+1]
		minZ := -farD
		maxZ := -nearD

		for ix := 0; ix < g.NX; ix++ {
			p0left := g.PlanesX[ix]
			p0right := g.PlanesX[ix+1].Mul(-1)

			minX := float32(math.MaxFloat32)
			maxX := float32(-math.MaxFloat32)
			for c := 0; c < 4; c++ {
				var p0 mgl32.Vec4
				if c&1 == 0 {
					p0 = p0left
				} else {
					p0 = p0right
				}
				var pz, pw float32
				if c>>1 == 0 {
					pz, pw = 1, nearD
				} else {
					pz, pw = -1, -farD
				}
				px := (pz * pw * p0.Z()) / p0.X()
				if px < minX {
					minX = px
				}
				if px > maxX {
					maxX = px
				}
			}
			minMaxX[ix] = [2]float32{minX, maxX}
		}

		for iy := 0; iy < g.NY; iy++ {
			p1bottom := g.PlanesY[iy]
			p1top := g.PlanesY[iy+1].Mul(-1)

			minY := float32(math.MaxFloat32)
			maxY := float32(-math.MaxFloat32)
			for c := 0; c < 4; c++ {
				var p1 mgl32.Vec4
				if c&1 == 0 {
					p1 = p1bottom
				} else {
					p1 = p1top
				}
				var pz, pw float32
				if c>>1 == 0 {
					pz, pw = 1, nearD
				} else {
					pz, pw = -1, -farD
				}
				py := (pz * pw * p1.Z()) / p1.Y()
				if py < minY {
					minY = py
				}
				if py > maxY {
					maxY = py
				}
			}

			for ix := 0; ix < g.NX; ix++ {
				minP := mgl32.Vec3{minMaxX[ix][0], minY, minZ}
				maxP := mgl32.Vec3{minMaxX[ix][1], maxY, maxZ}
				center := minP.Add(maxP).Mul(0.5)
				radius := maxP.Sub(minP).Mul(0.5).Len()
				g.BoundingSpheres[fi] = mgl32.Vec4{center.X(), center.Y(), center.Z(), radius}
				fi++
			}
		}
	}
}

// FindSliceZ maps a (negative) view-space z to a slice index in [0, NZ),
// branch-free except for the behind-camera clamp (spec.md §4.1.2 step 5).
func (g *Grid) FindSliceZ(z float32) int {
	s := int((float32(math.Log2(float64(-z))) - g.log2ZLightFar) * g.linearizer + float32(g.NZ))
	if z >= 0 {
		s = 0
	}
	return clampInt(s, 0, g.NZ-1)
}

// ClipToIndices converts clip-space XY in [-1, 1] to froxel (x, y) indices.
func (g *Grid) ClipToIndices(clipX, clipY float32) (xi, yi int) {
	xi = clampInt(int(clipX*g.clipToFroxelX+g.clipToFroxelX), 0, g.NX-1)
	yi = clampInt(int(clipY*g.clipToFroxelY+g.clipToFroxelY), 0, g.NY-1)
	return
}

// ZParams exposes the FindSliceZ coefficients (log2(zLightFar) and the
// inverse linearizer) so the per-view UBO can ship the same shader-side
// slice reconstruction spec.md §6's indexing formula describes, without
// gpuext needing its own copy of Froxelizer.cpp's log/linearizer math.
func (g *Grid) ZParams() (log2ZLightFar, invLinearizer float32) {
	return g.log2ZLightFar, g.linearizer
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// project applies the projection matrix to a view-space point and returns
// its clip-space XY divided by W, matching Froxelizer.cpp's project().
func project(p mgl32.Mat4, v mgl32.Vec3) (x, y float32) {
	vx, vy, vz := v.X(), v.Y(), v.Z()
	cx := p.At(0, 0)*vx + p.At(0, 2)*vz + p.At(0, 3)
	cy := p.At(1, 1)*vy + p.At(1, 2)*vz + p.At(1, 3)
	w := p.At(3, 2)*vz + p.At(3, 3)
	return cx / w, cy / w
}
