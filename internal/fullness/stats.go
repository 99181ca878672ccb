// Package fullness measures how full each monitored water body is over
// time, from classified water-observation scenes clipped to the polygon.
package fullness

import (
	"github.com/basinwatch/basin-cli/pkg/datacube"
)

// MaxUnknownPercent is the quality cutoff: a scene is retained only when
// its indeterminate share is strictly below this value.
const MaxUnknownPercent = 10.0

// Tally counts masked pixels of one scene inside the polygon footprint.
type Tally struct {
	Wet   int
	Dry   int
	Total int
}

// Count tallies wet, dry and total pixels of a scene under the footprint
// mask. Flags and mask index the same row-major grid.
func Count(flags []uint16, mask []bool) Tally {
	var t Tally
	for i, inside := range mask {
		if !inside || i >= len(flags) {
			continue
		}
		t.Total++
		switch {
		case datacube.Wet(flags[i]):
			t.Wet++
		case datacube.Dry(flags[i]):
			t.Dry++
		}
	}
	return t
}

// Percentages are the wet, dry and indeterminate shares of a tally. They
// sum to 100 except in the zero-total substitution case.
type Percentages struct {
	Wet     float64
	Dry     float64
	Unknown float64
}

// Percentages derives the three shares. A scene with no pixels inside the
// footprint substitutes wet=0, dry=0, unknown=100.
func (t Tally) Percentages() Percentages {
	if t.Total == 0 {
		return Percentages{Wet: 0, Dry: 0, Unknown: 100}
	}
	total := float64(t.Total)
	return Percentages{
		Wet:     float64(t.Wet) / total * 100,
		Dry:     float64(t.Dry) / total * 100,
		Unknown: float64(t.Total-t.Wet-t.Dry) / total * 100,
	}
}

// Retained reports whether a scene passes the observation-quality filter.
// Exactly MaxUnknownPercent is excluded.
func (p Percentages) Retained() bool {
	return p.Unknown < MaxUnknownPercent
}
