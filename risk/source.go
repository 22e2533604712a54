package risk

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rustyeddy/fxrisk/portfolio"
)

const (
	// DefaultSamples is the length of every synthetic series.
	DefaultSamples = 100
	// MaxSamples bounds configurable series lengths.
	MaxSamples = 10_000

	returnBound   = 0.01
	volatilityLow = 0.015
	volatilityHi  = 0.025
	equityStep    = 0.005
)

// ReturnSource supplies the return series and volatility estimates the
// metric calculators consume. SyntheticSource draws uniform noise; a real
// implementation can substitute historical series without touching the
// formulas.
type ReturnSource interface {
	// PortfolioReturns returns per-period portfolio returns. Empty
	// portfolios yield an empty series.
	PortfolioReturns(p portfolio.Portfolio) []float64
	// SymbolReturns returns a per-period return series for one symbol.
	SymbolReturns(symbol string) []float64
	// Volatility estimates the volatility of symbol.
	Volatility(symbol string) float64
	// EquityCurve returns an equity path starting at start.
	EquityCurve(start float64) []float64
}

// Sampler draws uniform values in [lo, hi).
type Sampler interface {
	Uniform(lo, hi float64) float64
}

// SyntheticSource is the randomized stand-in for market history. Returns are
// uniform in [-1%, +1%], volatilities uniform in [1.5%, 2.5%] and re-drawn on
// every call, and equity steps uniform in [-0.5%, +0.5%]. Symbol series are
// drawn independently of the portfolio series.
//
// A SyntheticSource is safe for concurrent use.
type SyntheticSource struct {
	mu      sync.Mutex
	rng     *rand.Rand
	seed    uint64
	samples int
}

var _ ReturnSource = (*SyntheticSource)(nil)

// NewSyntheticSource returns a source producing series of samples points.
// A zero seed seeds from the clock; samples outside [2, MaxSamples] fall back
// to DefaultSamples.
func NewSyntheticSource(seed uint64, samples int) *SyntheticSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return newSource(seed, samples)
}

func newSource(seed uint64, samples int) *SyntheticSource {
	if samples < 2 || samples > MaxSamples {
		samples = DefaultSamples
	}
	return &SyntheticSource{
		rng:     rand.New(rand.NewPCG(seed, seed>>1|1)),
		seed:    seed,
		samples: samples,
	}
}

// Seed returns the effective seed.
func (s *SyntheticSource) Seed() uint64 { return s.seed }

// Samples returns the series length.
func (s *SyntheticSource) Samples() int { return s.samples }

// Nonce draws one value from the source's own stream. Each stress run takes
// a fresh nonce so repeated runs see new draws.
func (s *SyntheticSource) Nonce() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint64()
}

// Derive returns an independent source whose seed is a function of this
// source's seed, nonce and name, so per-scenario draws do not depend on
// scheduling.
func (s *SyntheticSource) Derive(name string, nonce uint64) *SyntheticSource {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return newSource(s.seed^nonce^h.Sum64(), s.samples)
}

func (s *SyntheticSource) Uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uniform(lo, hi)
}

// uniform must be called with mu held.
func (s *SyntheticSource) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *SyntheticSource) PortfolioReturns(p portfolio.Portfolio) []float64 {
	if len(p.Positions) == 0 {
		return nil
	}

	balance := p.BalanceFloat()
	weights := make([]float64, len(p.Positions))
	for i, pos := range p.Positions {
		weights[i] = SafeDivide(pos.NotionalValue(), balance, 0)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]float64, s.samples)
	for i := range out {
		var r float64
		for _, w := range weights {
			r += s.uniform(-returnBound, returnBound) * w
		}
		out[i] = r
	}
	return out
}

func (s *SyntheticSource) SymbolReturns(symbol string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]float64, s.samples)
	for i := range out {
		out[i] = s.uniform(-returnBound, returnBound)
	}
	return out
}

// Volatility is deliberately not cached: two calls for the same symbol
// return different estimates.
func (s *SyntheticSource) Volatility(symbol string) float64 {
	return s.Uniform(volatilityLow, volatilityHi)
}

func (s *SyntheticSource) EquityCurve(start float64) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]float64, s.samples)
	v := start
	for i := range out {
		if i > 0 {
			v *= 1 + s.uniform(-equityStep, equityStep)
		}
		out[i] = v
	}
	return out
}
