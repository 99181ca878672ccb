package irrigation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		mean      float64
		code      int
		irrigated bool
	}{
		{name: "high confidence", mean: 0.85, code: Code80, irrigated: true},
		{name: "upper boundary inclusive", mean: 0.80, code: Code80, irrigated: true},
		{name: "band 70", mean: 0.75, code: Code70, irrigated: true},
		{name: "band 60", mean: 0.62, code: Code60, irrigated: true},
		{name: "band 55", mean: 0.56, code: Code55, irrigated: true},
		{name: "lowest boundary inclusive", mean: 0.55, code: Code55, irrigated: true},
		{name: "just below lowest band", mean: 0.5499, irrigated: false},
		{name: "bare ground", mean: 0.50, irrigated: false},
		{name: "negative index", mean: -0.2, irrigated: false},
		{name: "nan input", mean: math.NaN(), irrigated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := Classify(tt.mean)
			assert.Equal(t, tt.irrigated, ok)
			if tt.irrigated {
				assert.Equal(t, tt.code, code)
			}
		})
	}
}

func TestClassifyGrid(t *testing.T) {
	vals := []float32{0.85, 0.75, 0.62, 0.56, 0.50}
	out := ClassifyGrid(vals)

	assert.Equal(t, float32(80), out[0])
	assert.Equal(t, float32(70), out[1])
	assert.Equal(t, float32(60), out[2])
	assert.Equal(t, float32(55), out[3])
	assert.True(t, math.IsNaN(float64(out[4])))
}
