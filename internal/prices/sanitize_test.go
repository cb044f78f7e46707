package prices

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeNumber(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float64", 1.459, 1.459, true},
		{"int", 3, 3, true},
		{"int64", int64(-7), -7, true},
		{"plain string", "1.459", 1.459, true},
		{"comma decimal string", "1,459", 1.459, true},
		{"padded string", "  1,62 ", 1.62, true},
		{"empty string", "", 0, false},
		{"garbage string", "n/a", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SanitizeNumber(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestMean(t *testing.T) {
	got, ok := mean([]float64{1, 2, 3})
	require.True(t, ok)
	assert.InDelta(t, 2, got, 1e-9)

	// An empty slice must report absence, not a zero price.
	_, ok = mean(nil)
	assert.False(t, ok)
	_, ok = mean([]float64{})
	assert.False(t, ok)
}
