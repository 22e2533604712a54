package risk

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed portfolios or arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateCalculation marks a zero denominator that the caller has
	// to hear about. Metric calculators never return it; they degrade to 0.
	ErrDegenerateCalculation = errors.New("degenerate calculation")

	// ErrInvalidStopLoss is returned by position sizing when the stop equals
	// the entry price.
	ErrInvalidStopLoss = fmt.Errorf("%w: stop loss equals price", ErrDegenerateCalculation)

	// ErrConfiguration marks risk limits or scenarios outside their ranges.
	ErrConfiguration = errors.New("configuration error")
)
