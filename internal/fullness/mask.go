package fullness

import (
	"github.com/twpayne/go-geom"

	"github.com/basinwatch/basin-cli/internal/shapes"
)

// Mask rasterizes a polygon footprint onto a scene grid. The returned
// slice is row-major Width*Height; a cell is true when its center falls
// inside the footprint. The even-odd rule across all rings makes holes
// come out as outside.
func Mask(g geom.T, transform [6]float64, width, height int) []bool {
	rings := shapes.Rings(g)
	mask := make([]bool, width*height)
	if len(rings) == 0 {
		return mask
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			// Cell-center coordinates under the affine geotransform.
			cx := float64(col) + 0.5
			cy := float64(row) + 0.5
			x := transform[0] + cx*transform[1] + cy*transform[2]
			y := transform[3] + cx*transform[4] + cy*transform[5]

			if evenOdd(rings, x, y) {
				mask[row*width+col] = true
			}
		}
	}
	return mask
}

// evenOdd ray-casts horizontally from (x, y) and counts edge crossings
// over every ring.
func evenOdd(rings [][]float64, x, y float64) bool {
	inside := false
	for _, flat := range rings {
		n := len(flat) / 2
		if n < 3 {
			continue
		}
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			xi, yi := flat[i*2], flat[i*2+1]
			xj, yj := flat[j*2], flat[j*2+1]
			if (yi > y) != (yj > y) &&
				x < (xj-xi)*(y-yi)/(yj-yi)+xi {
				inside = !inside
			}
		}
	}
	return inside
}
