package portfolio

import "github.com/shopspring/decimal"

func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Dec is a shorthand for decimal.NewFromFloat used by callers building
// snapshots in code.
func Dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecPtr returns a pointer to Dec(f), for the optional stop and target fields.
func DecPtr(f float64) *decimal.Decimal {
	d := Dec(f)
	return &d
}
