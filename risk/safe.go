package risk

import "math"

// SafeDivide returns num/den, or def when den is zero or the quotient is not
// finite. Every ratio in the metric calculators goes through it.
func SafeDivide(num, den, def float64) float64 {
	if den == 0 {
		return def
	}
	q := num / den
	if !finite(q) {
		return def
	}
	return q
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func excess(x, limit float64) float64 {
	return math.Max(0, x-limit)
}
