// market/instruments.go
package market

import "strings"

type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	PipLocation   int
	MarginRate    float64
}

// DefaultPipLocation is used for symbols missing from Instruments.
const DefaultPipLocation = -4

var Instruments = map[string]InstrumentMeta{
	"EURUSD": {Name: "EURUSD", BaseCurrency: "EUR", QuoteCurrency: "USD", PipLocation: -4, MarginRate: 0.02},
	"GBPUSD": {Name: "GBPUSD", BaseCurrency: "GBP", QuoteCurrency: "USD", PipLocation: -4, MarginRate: 0.02},
	"AUDUSD": {Name: "AUDUSD", BaseCurrency: "AUD", QuoteCurrency: "USD", PipLocation: -4, MarginRate: 0.02},
	"NZDUSD": {Name: "NZDUSD", BaseCurrency: "NZD", QuoteCurrency: "USD", PipLocation: -4, MarginRate: 0.02},
	"USDCHF": {Name: "USDCHF", BaseCurrency: "USD", QuoteCurrency: "CHF", PipLocation: -4, MarginRate: 0.02},
	"USDCAD": {Name: "USDCAD", BaseCurrency: "USD", QuoteCurrency: "CAD", PipLocation: -4, MarginRate: 0.02},
	"USDJPY": {Name: "USDJPY", BaseCurrency: "USD", QuoteCurrency: "JPY", PipLocation: -2, MarginRate: 0.02},
	"EURJPY": {Name: "EURJPY", BaseCurrency: "EUR", QuoteCurrency: "JPY", PipLocation: -2, MarginRate: 0.02},
	"EURGBP": {Name: "EURGBP", BaseCurrency: "EUR", QuoteCurrency: "GBP", PipLocation: -4, MarginRate: 0.02},
}

// NormalizeSymbol maps "EUR_USD", "EUR/USD" and "eurusd" to "EURUSD".
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "/", "").Replace(s)
}

// Lookup finds instrument metadata for any of the accepted symbol spellings.
func Lookup(symbol string) (InstrumentMeta, bool) {
	meta, ok := Instruments[NormalizeSymbol(symbol)]
	return meta, ok
}

// PipLocation returns the pip exponent for symbol, falling back to
// DefaultPipLocation for unknown instruments.
func PipLocation(symbol string) int {
	if meta, ok := Lookup(symbol); ok {
		return meta.PipLocation
	}
	return DefaultPipLocation
}
