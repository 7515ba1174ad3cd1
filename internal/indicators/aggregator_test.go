package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
)

// seriesOf builds a candle series from a close-price walk, with a small
// synthetic high/low range around each close.
func seriesOf(closes []float64) []chain.Candle {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]chain.Candle, len(closes))
	for i, c := range closes {
		candles[i] = chain.Candle{
			Time:   start.AddDate(0, 0, i),
			Open:   c * 0.998,
			High:   c * 1.004,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000,
		}
	}
	return candles
}

func trendingCloses(start, dailyMove float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		// A mild wiggle keeps RSI and ADX off their degenerate extremes.
		wiggle := 0.0
		if i%5 == 0 {
			wiggle = -dailyMove / 2
		}
		closes[i] = start + dailyMove*float64(i) + wiggle
	}
	return closes
}

func TestComputeUptrend(t *testing.T) {
	agg := NewTalibAggregator()
	snap := agg.Compute(seriesOf(trendingCloses(22000, 40, 60)))

	assert.Equal(t, TrendBullish, snap.Trend)
	assert.Equal(t, MomentumUp, snap.Momentum)
	require.NotNil(t, snap.ADX)
	assert.False(t, math.IsNaN(*snap.ADX))
	assert.Greater(t, *snap.ADX, 0.0)
}

func TestComputeDowntrend(t *testing.T) {
	agg := NewTalibAggregator()
	snap := agg.Compute(seriesOf(trendingCloses(23000, -40, 60)))

	assert.Equal(t, TrendBearish, snap.Trend)
	assert.Equal(t, MomentumDown, snap.Momentum)
}

func TestComputeShortSeriesDegradesToNeutral(t *testing.T) {
	agg := NewTalibAggregator()

	snap := agg.Compute(seriesOf([]float64{22000, 22010, 22005}))
	assert.Equal(t, Neutral(), snap)

	assert.Equal(t, Neutral(), agg.Compute(nil))
}

func TestNeutralSnapshot(t *testing.T) {
	n := Neutral()
	assert.Equal(t, TrendNeutral, n.Trend)
	assert.Equal(t, MomentumFlat, n.Momentum)
	assert.Nil(t, n.ADX)
}
