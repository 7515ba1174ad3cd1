package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/indicators"
)

func TestATMStrikeUsesReferencePrice(t *testing.T) {
	ctx := newTestContext(bullishChain(), fixtureInputs(), clockAt(10, 15))

	atm, ok := ctx.ATMStrike()
	require.True(t, ok)
	// Reference price 22015 beats the 22050 spot for ATM selection.
	assert.Equal(t, 22000.0, atm)
}

func TestATMStrikeFallsBackToSpot(t *testing.T) {
	snapshot := chain.NewSnapshot(map[float64]chain.StrikePair{
		22000: {}, 22100: {}, 22200: {},
	}, 0)
	inputs := fixtureInputs()
	inputs.Spot = 22140
	ctx := newTestContext(snapshot, inputs, clockAt(10, 15))

	atm, ok := ctx.ATMStrike()
	require.True(t, ok)
	assert.Equal(t, 22100.0, atm)
}

func TestATMStrikeEmptyChain(t *testing.T) {
	ctx := newTestContext(chain.NewSnapshot(nil, 0), fixtureInputs(), clockAt(10, 15))
	_, ok := ctx.ATMStrike()
	assert.False(t, ok)
}

func TestStrikeStepInference(t *testing.T) {
	tests := []struct {
		name     string
		strikes  []float64
		override float64
		want     float64
	}{
		{"modal gap wins", []float64{21800, 21900, 22000, 22100, 22250}, 0, 100},
		{"caller override wins", []float64{21800, 21900, 22000}, 75, 75},
		{"no repeating gap defaults", []float64{22000, 22050, 22175}, 0, 50},
		{"single strike defaults", []float64{22000}, 0, 50},
		{"empty chain defaults", nil, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := make(map[float64]chain.StrikePair, len(tt.strikes))
			for _, s := range tt.strikes {
				pairs[s] = chain.StrikePair{}
			}
			inputs := fixtureInputs()
			inputs.StrikeStep = tt.override
			ctx := newTestContext(chain.NewSnapshot(pairs, 0), inputs, clockAt(10, 15))
			assert.Equal(t, tt.want, ctx.StrikeStep())
		})
	}
}

func TestATMRangePct(t *testing.T) {
	tests := []struct {
		ivRank float64
		want   float64
	}{
		{0.05, 0.010},
		{0.19, 0.010},
		{0.20, 0.015},
		{0.49, 0.015},
		{0.50, 0.025},
		{0.75, 0.025},
	}
	for _, tt := range tests {
		inputs := fixtureInputs()
		inputs.IVRank = tt.ivRank
		ctx := newTestContext(bullishChain(), inputs, clockAt(10, 15))
		assert.InDelta(t, tt.want, ctx.ATMRangePct(), 1e-9, "iv rank %.2f", tt.ivRank)
	}
}

func TestMinDeltaForSchedule(t *testing.T) {
	tests := []struct {
		name   string
		clock  Clock
		strike float64
		want   float64
	}{
		{"morning at ATM", clockAt(10, 0), 22000, 0.25},
		{"late morning at ATM", clockAt(11, 0), 22000, 0.30},
		{"afternoon at ATM", clockAt(13, 30), 22000, 0.35},
		{"final hour at ATM", clockAt(14, 5), 22000, 0.45},
		{"one step out", clockAt(14, 5), 22100, 0.40},
		{"three steps out", clockAt(14, 5), 22300, 0.30},
		{"floor holds far out", clockAt(14, 5), 22600, 0.20},
		{"morning far out floors immediately", clockAt(10, 0), 22300, 0.20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(bullishChain(), fixtureInputs(), tt.clock)
			assert.InDelta(t, tt.want, ctx.MinDeltaFor(tt.strike), 1e-9)
		})
	}
}

func TestThetaLateEntry(t *testing.T) {
	tests := []struct {
		name   string
		clock  Clock
		expiry time.Time
		want   bool
	}{
		{"expiry today past cutoff", clockAt(14, 45), sameDayExpiry(), true},
		{"expiry today at cutoff", clockAt(14, 30), sameDayExpiry(), false},
		{"expiry today morning", clockAt(10, 0), sameDayExpiry(), false},
		{"future expiry past cutoff", clockAt(14, 45), fixtureExpiry(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := fixtureInputs()
			inputs.Expiry = tt.expiry
			ctx := newTestContext(bullishChain(), inputs, tt.clock)
			assert.Equal(t, tt.want, ctx.ThetaLateEntry())
		})
	}
}

func TestSnapToGrid(t *testing.T) {
	ctx := newTestContext(bullishChain(), fixtureInputs(), clockAt(10, 15))

	tests := []struct {
		target float64
		want   float64
	}{
		{22000, 22000},
		{22040, 22000},
		{22060, 22100},
		{22175, 22200},
		{25000, 22300}, // beyond the grid clamps to the furthest listed strike
	}
	for _, tt := range tests {
		got, ok := ctx.SnapToGrid(tt.target)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "target %.0f", tt.target)
	}
}

func TestSnapToGridIdempotent(t *testing.T) {
	ctx := newTestContext(bullishChain(), fixtureInputs(), clockAt(10, 15))

	for _, target := range []float64{21753, 21999.5, 22040, 22160, 23500} {
		first, ok := ctx.SnapToGrid(target)
		require.True(t, ok)
		second, ok := ctx.SnapToGrid(first)
		require.True(t, ok)
		assert.Equal(t, first, second, "target %.1f", target)
	}
}

func TestSnapToGridIdempotentIrregularGrid(t *testing.T) {
	// Listed strikes off the step lattice: the first snap can land on a
	// strike that is not a step multiple of ATM, and snapping that
	// strike again must return it unchanged.
	pairs := map[float64]chain.StrikePair{
		22000: {}, 22110: {}, 22130: {},
	}
	inputs := fixtureInputs()
	inputs.StrikeStep = 100
	ctx := newTestContext(chain.NewSnapshot(pairs, 22015), inputs, clockAt(10, 15))

	first, ok := ctx.SnapToGrid(22180)
	require.True(t, ok)
	assert.Equal(t, 22130.0, first)

	for _, target := range []float64{22180, 22110, 22130, 21900, 22500} {
		first, ok := ctx.SnapToGrid(target)
		require.True(t, ok)
		second, ok := ctx.SnapToGrid(first)
		require.True(t, ok)
		assert.Equal(t, first, second, "target %.0f", target)
	}
}

func TestSnapToGridEmptyChain(t *testing.T) {
	ctx := newTestContext(chain.NewSnapshot(nil, 0), fixtureInputs(), clockAt(10, 15))
	_, ok := ctx.SnapToGrid(22000)
	assert.False(t, ok)
}

func TestDaysToExpiryLocalCalendar(t *testing.T) {
	loc := testEngineConfig().Location()
	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		// Midnight IST is 18:30 UTC the previous day; counting must
		// follow exchange-local days, not UTC days.
		{"three days out at local midnight", time.Date(2025, 9, 5, 0, 0, 0, 0, loc), 3},
		{"next day", time.Date(2025, 9, 3, 0, 0, 0, 0, loc), 1},
		{"expiry today", sameDayExpiry(), 0},
		{"past expiry clamps to zero", time.Date(2025, 8, 29, 0, 0, 0, 0, loc), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := fixtureInputs()
			inputs.Expiry = tt.expiry
			ctx := newTestContext(bullishChain(), inputs, clockAt(10, 15))
			assert.Equal(t, tt.want, ctx.daysToExpiry())
		})
	}
}

func TestPremiumDriftFallback(t *testing.T) {
	t.Run("bullish drift", func(t *testing.T) {
		ctx := newTestContext(bullishChain(), fixtureInputs(), clockAt(10, 15))
		tech := ctx.Technical()
		assert.Equal(t, indicators.TrendBullish, tech.Trend)
		assert.Equal(t, indicators.MomentumUp, tech.Momentum)
		assert.Nil(t, tech.ADX)
	})

	t.Run("bearish drift", func(t *testing.T) {
		ctx := newTestContext(bearishChain(), fixtureInputs(), clockAt(10, 15))
		tech := ctx.Technical()
		assert.Equal(t, indicators.TrendBearish, tech.Trend)
		assert.Equal(t, indicators.MomentumDown, tech.Momentum)
	})

	t.Run("no usable premiums is neutral", func(t *testing.T) {
		snapshot := chain.NewSnapshot(map[float64]chain.StrikePair{
			22000: {Call: &chain.OptionQuote{LastPrice: 100}},
		}, 0)
		ctx := newTestContext(snapshot, fixtureInputs(), clockAt(10, 15))
		assert.Equal(t, indicators.Neutral(), ctx.Technical())
	})
}

func TestAggregatorOverridesFallback(t *testing.T) {
	adx := 28.0
	agg := &staticAggregator{snap: indicators.Snapshot{
		Trend:    indicators.TrendBearish,
		Momentum: indicators.MomentumDown,
		ADX:      &adx,
	}}
	inputs := fixtureInputs()
	inputs.Candles = []chain.Candle{{Close: 22000}, {Close: 22010}}

	ctx := NewContext(bullishChain(), inputs, testEngineConfig(), clockAt(10, 15), agg)
	tech := ctx.Technical()
	assert.Equal(t, indicators.TrendBearish, tech.Trend)
	require.NotNil(t, tech.ADX)
	assert.Equal(t, 28.0, *tech.ADX)
}
