package analyzer

import (
	"time"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/config"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/indicators"
)

// staticAggregator returns a fixed technical snapshot, letting tests
// drive the gates without crafting candle series.
type staticAggregator struct {
	snap indicators.Snapshot
}

var _ indicators.Aggregator = (*staticAggregator)(nil)

func (s *staticAggregator) Compute([]chain.Candle) indicators.Snapshot { return s.snap }

func testEngineConfig() config.EngineConfig {
	return config.DefaultEngine("paper")
}

// clockAt pins the clock to the fixture session date at the given
// exchange-local time of day.
func clockAt(hour, minute int) Clock {
	loc := testEngineConfig().Location()
	return FixedClock(time.Date(2025, 9, 2, hour, minute, 0, 0, loc))
}

// fixtureExpiry is two days past the fixture session date, keeping the
// late-entry gate quiet unless a test moves the expiry on purpose.
func fixtureExpiry() time.Time {
	return time.Date(2025, 9, 4, 0, 0, 0, 0, testEngineConfig().Location())
}

func sameDayExpiry() time.Time {
	return time.Date(2025, 9, 2, 0, 0, 0, 0, testEngineConfig().Location())
}

func callQuote(last, prevClose, iv, delta, oi, vol float64) *chain.OptionQuote {
	return &chain.OptionQuote{
		LastPrice:            last,
		ImpliedVolatility:    iv,
		OpenInterest:         oi,
		Volume:               vol,
		Greeks:               &chain.Greeks{Delta: delta, Gamma: 0.002, Theta: -8.5, Vega: 11.0},
		PreviousClosePrice:   prevClose,
		PreviousOpenInterest: oi * 0.95,
		PreviousVolume:       vol * 0.8,
		TopBidPrice:          last - 1,
		TopAskPrice:          last + 1,
	}
}

func putQuote(last, prevClose, iv, delta, oi, vol float64) *chain.OptionQuote {
	q := callQuote(last, prevClose, iv, delta, oi, vol)
	q.Greeks.Delta = -delta
	return q
}

// bullishChain is the canonical fixture: ATM 22000, strike step 100,
// chain-reported reference 22015, call premiums up and put premiums
// down on the day so the fallback heuristic reads bullish.
func bullishChain() *chain.Snapshot {
	return chain.NewSnapshot(map[float64]chain.StrikePair{
		21800: {
			Call: callQuote(250.0, 230.0, 19.5, 0.78, 21000, 700),
			Put:  putQuote(32.0, 39.0, 20.2, 0.22, 26000, 900),
		},
		21900: {
			Call: callQuote(180.0, 165.0, 19.0, 0.64, 30000, 1200),
			Put:  putQuote(52.0, 61.0, 19.6, 0.34, 33000, 1100),
		},
		22000: {
			Call: callQuote(120.5, 110.0, 18.4, 0.52, 50000, 2000),
			Put:  putQuote(95.0, 101.5, 19.1, 0.48, 42000, 1800),
		},
		22100: {
			Call: callQuote(78.0, 70.0, 18.0, 0.42, 52000, 2100),
			Put:  putQuote(140.0, 150.0, 18.8, 0.57, 28000, 950),
		},
		22200: {
			Call: callQuote(45.0, 40.0, 17.6, 0.33, 36000, 1500),
			Put:  putQuote(195.0, 204.0, 18.5, 0.68, 18000, 600),
		},
		22300: {
			Call: callQuote(24.0, 21.0, 17.2, 0.12, 28000, 1300),
			Put:  putQuote(260.0, 268.0, 18.2, 0.79, 12000, 400),
		},
	}, 22015)
}

// bearishChain mirrors the fixture so put-side paths can run through
// the direction gate.
func bearishChain() *chain.Snapshot {
	return chain.NewSnapshot(map[float64]chain.StrikePair{
		21700: {
			Put: putQuote(30.0, 24.0, 20.0, 0.12, 24000, 1000),
		},
		21800: {
			Call: callQuote(230.0, 245.0, 19.5, 0.78, 21000, 700),
			Put:  putQuote(42.0, 35.0, 20.2, 0.33, 26000, 900),
		},
		21900: {
			Call: callQuote(165.0, 178.0, 19.0, 0.64, 30000, 1200),
			Put:  putQuote(70.0, 60.0, 19.6, 0.42, 33000, 1100),
		},
		22000: {
			Call: callQuote(110.0, 121.0, 18.4, 0.52, 50000, 2000),
			Put:  putQuote(102.0, 94.0, 19.1, 0.52, 42000, 1800),
		},
		22100: {
			Call: callQuote(70.0, 79.0, 18.0, 0.42, 52000, 2100),
			Put:  putQuote(150.0, 141.0, 18.8, 0.57, 28000, 950),
		},
	}, 21995)
}

func fixtureInputs() Inputs {
	return Inputs{
		Spot:   22050,
		IVRank: 0.3,
		Expiry: fixtureExpiry(),
	}
}

func newTestContext(snapshot *chain.Snapshot, inputs Inputs, clock Clock) *Context {
	return NewContext(snapshot, inputs, testEngineConfig(), clock, nil)
}
