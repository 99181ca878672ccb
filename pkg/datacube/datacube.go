// Package datacube provides a client for the remote time-indexed raster
// archive serving classified water observations.
package datacube

import (
	"fmt"
	"time"
)

// Water-classification pixel flags, as returned by the archive. A pixel is
// a clear observation only when every interference bit is unset.
const (
	FlagDry       uint16 = 0
	FlagNoData    uint16 = 1
	FlagNonContig uint16 = 2
	FlagSeaWater  uint16 = 4
	FlagShadow    uint16 = 8
	FlagHighSlope uint16 = 16
	FlagCloud     uint16 = 64
	FlagWet       uint16 = 128
)

// Wet reports whether a pixel is a clear wet observation.
func Wet(flag uint16) bool {
	return flag == FlagWet
}

// Dry reports whether a pixel is a clear dry observation.
func Dry(flag uint16) bool {
	return flag == FlagDry
}

// BBox is an axis-aligned bounding box in the archive's projected
// coordinate system.
type BBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// String renders the bbox as the minx,miny,maxx,maxy query form.
func (b BBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Scene is one time slice of a product covering a queried footprint.
type Scene struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
}

// Grid is the pixel block of one scene clipped to a query bbox. Flags is a
// row-major flat array of Width*Height water-classification values, and
// Transform is the six-element affine geotransform of the block.
type Grid struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Transform [6]float64 `json:"transform"`
	Flags     []uint16   `json:"flags"`
}

// SceneGrid pairs a scene's metadata with its pixel block.
type SceneGrid struct {
	Scene Scene
	Grid  *Grid
}
