package irrigation

import "math"

// Irrigation-confidence codes assigned to the per-segment mean vegetation
// index. A segment below the lowest breakpoint is not irrigated.
const (
	Code80 = 80
	Code70 = 70
	Code60 = 60
	Code55 = 55
)

// Breakpoints of the multi-level threshold, inclusive lower bounds.
const (
	break80 = 0.80
	break70 = 0.70
	break60 = 0.60
	break55 = 0.55
)

// Classify maps one segment-mean value to its confidence code. The second
// return is false for segments below the lowest breakpoint (and for NaN
// input).
func Classify(mean float64) (int, bool) {
	switch {
	case math.IsNaN(mean):
		return 0, false
	case mean >= break80:
		return Code80, true
	case mean >= break70:
		return Code70, true
	case mean >= break60:
		return Code60, true
	case mean >= break55:
		return Code55, true
	default:
		return 0, false
	}
}

// ClassifyGrid thresholds a segment-mean band in place, writing NaN for
// not-irrigated cells. The returned slice aliases vals.
func ClassifyGrid(vals []float32) []float32 {
	for i, v := range vals {
		if code, ok := Classify(float64(v)); ok {
			vals[i] = float32(code)
		} else {
			vals[i] = float32(math.NaN())
		}
	}
	return vals
}
