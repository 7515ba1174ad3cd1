// Package indicators derives the technical snapshot (trend, momentum,
// ADX) that the strike-selection engine consumes, from historical
// candles of the underlying.
package indicators

import (
	talib "github.com/markcheno/go-talib"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
)

// TrendDirection is the detected directional bias of the underlying.
type TrendDirection string

// MomentumDirection is the detected short-term momentum of the underlying.
type MomentumDirection string

const (
	// TrendBullish indicates an upward bias.
	TrendBullish TrendDirection = "bullish"
	// TrendBearish indicates a downward bias.
	TrendBearish TrendDirection = "bearish"
	// TrendNeutral indicates no usable bias.
	TrendNeutral TrendDirection = "neutral"

	// MomentumUp indicates rising momentum.
	MomentumUp MomentumDirection = "up"
	// MomentumDown indicates falling momentum.
	MomentumDown MomentumDirection = "down"
	// MomentumFlat indicates no usable momentum.
	MomentumFlat MomentumDirection = "flat"
)

// Snapshot is one trend/momentum/ADX readout. ADX is nil when the
// series was too short to compute it; consumers must treat a missing
// ADX as passing, never failing.
type Snapshot struct {
	Trend    TrendDirection    `json:"trend"`
	Momentum MomentumDirection `json:"momentum"`
	ADX      *float64          `json:"adx,omitempty"`
}

// Neutral returns the snapshot used when no candles are available and
// no fallback applies.
func Neutral() Snapshot {
	return Snapshot{Trend: TrendNeutral, Momentum: MomentumFlat}
}

// Aggregator computes a Snapshot from historical candles.
type Aggregator interface {
	Compute(candles []chain.Candle) Snapshot
}

// TalibAggregator is the default Aggregator, built on go-talib: an EMA
// crossover for trend, RSI for momentum, and Wilder's ADX.
type TalibAggregator struct {
	FastPeriod int
	SlowPeriod int
	RSIPeriod  int
	ADXPeriod  int
}

// Compile-time interface compliance check.
var _ Aggregator = (*TalibAggregator)(nil)

// NewTalibAggregator returns a TalibAggregator with the default 9/21
// EMA pair and 14-period RSI and ADX.
func NewTalibAggregator() *TalibAggregator {
	return &TalibAggregator{FastPeriod: 9, SlowPeriod: 21, RSIPeriod: 14, ADXPeriod: 14}
}

// rsi bands outside which momentum is considered directional
const (
	rsiUpperBand = 55.0
	rsiLowerBand = 45.0
)

// Compute derives the technical snapshot. Series shorter than the
// slowest lookback degrade to a neutral readout rather than erroring.
func (a *TalibAggregator) Compute(candles []chain.Candle) Snapshot {
	snap := Neutral()
	closes := chain.Closes(candles)

	if len(closes) > a.SlowPeriod {
		fast := talib.Ema(closes, a.FastPeriod)
		slow := talib.Ema(closes, a.SlowPeriod)
		f, s := fast[len(fast)-1], slow[len(slow)-1]
		// Require separation beyond float noise before calling a trend.
		tolerance := s * 0.0005
		switch {
		case f > s+tolerance:
			snap.Trend = TrendBullish
		case f < s-tolerance:
			snap.Trend = TrendBearish
		}
	}

	if len(closes) > a.RSIPeriod {
		rsi := talib.Rsi(closes, a.RSIPeriod)
		switch r := rsi[len(rsi)-1]; {
		case r > rsiUpperBand:
			snap.Momentum = MomentumUp
		case r < rsiLowerBand:
			snap.Momentum = MomentumDown
		}
	}

	// ADX needs roughly two lookback periods of bars before its first
	// stable value.
	if len(candles) > 2*a.ADXPeriod {
		adx := talib.Adx(chain.Highs(candles), chain.Lows(candles), closes, a.ADXPeriod)
		if v := adx[len(adx)-1]; v > 0 {
			snap.ADX = &v
		}
	}

	return snap
}
