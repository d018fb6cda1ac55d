package gpuext

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/gekko3d/luma/froxel"
	"golang.org/x/image/draw"
)

// DumpFroxelOccupancyPNG writes a heatmap of grid's light occupancy to
// path: one pixel per (x, y) froxel column, summed over every z slice,
// shaded from black (empty) to white (saturated once the column averages
// 32 lights per slice).
// This is the debug visualization spec.md §7's "optionally recorded in a
// debug counter" alludes to for record-buffer pressure — distinct from the
// teacher's use of golang.org/x/image for glyph-atlas text rendering
// (voxelrt/rt/core/text_renderer.go); here x/image/draw upscales the
// one-pixel-per-froxel source image to a human-viewable size, since the
// froxel grid itself is typically only a few dozen cells wide.
func DumpFroxelOccupancyPNG(grid *froxel.Grid, result froxel.Result, path string, pixelsPerFroxel int) error {
	if pixelsPerFroxel < 1 {
		pixelsPerFroxel = 1
	}

	src := image.NewGray(image.Rect(0, 0, grid.NX, grid.NY))
	for iy := 0; iy < grid.NY; iy++ {
		for ix := 0; ix < grid.NX; ix++ {
			total := 0
			for iz := 0; iz < grid.NZ; iz++ {
				total += result.Entries[grid.FroxelIndex(ix, iy, iz)].Total()
			}
			src.SetGray(ix, iy, color.Gray{Y: occupancyToGray(total, grid.NZ)})
		}
	}

	dstW := grid.NX * pixelsPerFroxel
	dstH := grid.NY * pixelsPerFroxel
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("luma/gpuext: create froxel dump: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("luma/gpuext: encode froxel dump: %w", err)
	}
	return nil
}

// occupancyToGray maps a column's total light references (summed across
// every z slice) to a gray level, saturating once the column averages
// maxPerSlice (32) lights per slice so a fully lit grid reads as solid white rather than
// clipping silently at 255 without a visible ceiling.
func occupancyToGray(total, nz int) uint8 {
	if nz == 0 {
		return 0
	}
	const maxPerSlice = 32
	avg := float64(total) / float64(nz)
	level := avg / maxPerSlice * 255
	if level > 255 {
		level = 255
	}
	return uint8(level)
}
