// Package chunk partitions an ordered polygon list into contiguous ranges,
// one per worker invocation.
package chunk

import (
	"github.com/rotisserie/eris"
)

// DefaultFanout is the number of worker invocations the polygon list is
// split across when the configuration does not override it.
const DefaultFanout = 32

// Range is a half-open index interval [Start, End) into the ordered
// polygon list.
type Range struct {
	Index int `json:"index"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether the range selects no items.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Size returns the chunk size for count items split across fanout workers:
// ceil(count/fanout) plus one. The extra slot keeps a fixed fanout covering
// the list even as it grows between runs; the last chunks of the plan can
// come out short or empty, which callers accept.
func Size(count, fanout int) int {
	if count <= 0 {
		return 1
	}
	size := count / fanout
	if count%fanout != 0 {
		size++
	}
	return size + 1
}

// Plan returns the full partition plan for count items across fanout
// workers. Ranges are disjoint, contiguous, clipped to [0, count), and
// their union covers the whole list.
func Plan(count, fanout int) []Range {
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	size := Size(count, fanout)

	plan := make([]Range, 0, fanout)
	for i := 1; i <= fanout; i++ {
		plan = append(plan, clip(i, size, count))
	}
	return plan
}

// Select returns the range for one 1-based worker index. Indices past the
// true partition count yield an empty range rather than an error.
func Select(count, fanout, index int) (Range, error) {
	if index < 1 {
		return Range{}, eris.Errorf("chunk: index %d is not 1-based", index)
	}
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	return clip(index, Size(count, fanout), count), nil
}

func clip(index, size, count int) Range {
	start := (index - 1) * size
	end := index * size
	if start > count {
		start = count
	}
	if end > count {
		end = count
	}
	return Range{Index: index, Start: start, End: end}
}
