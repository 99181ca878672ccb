package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		fanout   int
		expected int
	}{
		{name: "zero count", count: 0, fanout: 32, expected: 1},
		{name: "exact multiple", count: 64, fanout: 32, expected: 3},
		{name: "remainder rounds up", count: 65, fanout: 32, expected: 4},
		{name: "fewer items than workers", count: 3, fanout: 32, expected: 2},
		{name: "single item", count: 1, fanout: 32, expected: 2},
		{name: "large list", count: 38000, fanout: 32, expected: 1189},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Size(tt.count, tt.fanout))
		})
	}
}

func TestSelectBoundaries(t *testing.T) {
	// ceil(100/32)+1 = 5, so index i covers [(i-1)*5, i*5) clipped to [0,100).
	r, err := Select(100, 32, 1)
	require.NoError(t, err)
	assert.Equal(t, Range{Index: 1, Start: 0, End: 5}, r)

	r, err = Select(100, 32, 3)
	require.NoError(t, err)
	assert.Equal(t, Range{Index: 3, Start: 10, End: 15}, r)

	// 20*5 = 100, so index 20 is the last populated chunk.
	r, err = Select(100, 32, 20)
	require.NoError(t, err)
	assert.Equal(t, Range{Index: 20, Start: 95, End: 100}, r)

	// Past the populated chunks: clipped empty, not an error.
	r, err = Select(100, 32, 21)
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Len())
}

func TestSelectRejectsZeroIndex(t *testing.T) {
	_, err := Select(100, 32, 0)
	assert.Error(t, err)

	_, err = Select(100, 32, -3)
	assert.Error(t, err)
}

func TestSelectThreePolygonsIndexOne(t *testing.T) {
	// 3 polygons, fanout 32: size = ceil(3/32)+1 = 2, index 1 covers [0,2),
	// so a 3-polygon run with index 1 drills the first two polygons and the
	// remaining polygon lands in chunk 2.
	r, err := Select(3, 32, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Start)
	assert.Equal(t, 2, r.End)

	r, err = Select(3, 32, 2)
	require.NoError(t, err)
	assert.Equal(t, Range{Index: 2, Start: 2, End: 3}, r)
}

func TestPlanDisjointAndCovering(t *testing.T) {
	counts := []int{0, 1, 3, 31, 32, 33, 64, 100, 997, 38000}

	for _, count := range counts {
		plan := Plan(count, 32)
		require.Len(t, plan, 32)

		covered := 0
		prevEnd := 0
		for _, r := range plan {
			// Contiguous and disjoint: each range starts where the last ended
			// (once clipped).
			assert.GreaterOrEqual(t, r.Start, prevEnd, "count=%d index=%d", count, r.Index)
			assert.LessOrEqual(t, r.End, count, "count=%d index=%d", count, r.Index)
			if !r.Empty() {
				assert.Equal(t, prevEnd, r.Start, "count=%d index=%d", count, r.Index)
			}
			covered += r.Len()
			if r.End > prevEnd {
				prevEnd = r.End
			}
		}
		assert.Equal(t, count, covered, "count=%d", count)
		assert.Equal(t, count, prevEnd, "count=%d", count)
	}
}

func TestPlanDefaultFanout(t *testing.T) {
	plan := Plan(100, 0)
	assert.Len(t, plan, DefaultFanout)
}
