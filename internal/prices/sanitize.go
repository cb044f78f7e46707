package prices

import (
	"math"
	"strconv"
	"strings"
)

// SanitizeNumber extracts a finite float from feed values that arrive as
// numbers or as comma/period formatted numeric strings ("1,459"). Anything
// else, including NaN and infinities, is discarded.
func SanitizeNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// mean returns the arithmetic mean of the values, ok=false for an empty
// slice. Absence of readings must yield "no price", never zero.
func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
