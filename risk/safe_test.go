package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDivide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		num, den, def float64
		want          float64
	}{
		{"normal", 6, 3, 0, 2},
		{"zero denominator", 1, 0, 0, 0},
		{"zero denominator custom default", 1, 0, -1, -1},
		{"nan numerator", math.NaN(), 2, 0, 0},
		{"overflow", math.MaxFloat64, 1e-300, 7, 7},
		{"zero numerator", 0, 5, 1, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SafeDivide(tt.num, tt.den, tt.def))
		})
	}
}
