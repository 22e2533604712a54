package market

import "math"

// ContractSize is the number of base-currency units in one standard lot.
// Every notional figure in this module is lots * price * ContractSize; it is
// not replaced by venue specific contract sizes.
const ContractSize float64 = 100_000.0

// PipValuePerLot is the simplified account-currency value of one pip on one
// standard lot. It is not derived from the symbol or account currency.
const PipValuePerLot float64 = 10.0

// MinLotSize is the smallest tradable size (one micro lot).
const MinLotSize float64 = 0.01

// Notional returns the full exposure of a position in quote currency.
func Notional(lots, price float64) float64 {
	return lots * price * ContractSize
}

// PipSize returns the price increment of one pip for a pip location.
func PipSize(loc int) float64 {
	return math.Pow(10, float64(loc))
}
