package analyzer

import (
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/indicators"
)

// Signal is the directional trade hypothesis supplied by an upstream
// strategy.
type Signal string

const (
	// SignalCall is the call-side (bullish) hypothesis.
	SignalCall Signal = "call"
	// SignalPut is the put-side (bearish) hypothesis.
	SignalPut Signal = "put"
)

// Side maps the signal onto the chain leg it trades.
func (s Signal) Side() chain.Side {
	if s == SignalPut {
		return chain.SidePut
	}
	return chain.SideCall
}

// StrategyProfile selects the scoring weight set.
type StrategyProfile string

const (
	// ProfileIntraday weights liquidity and momentum more heavily.
	ProfileIntraday StrategyProfile = "intraday"
	// ProfilePositional is every non-intraday profile.
	ProfilePositional StrategyProfile = "positional"
)

// Candidate is a filtered strike enriched with the deltas the scorer
// consumes.
type Candidate struct {
	Strike       float64           `json:"strike_price"`
	Quote        chain.OptionQuote `json:"quote"`
	PriceChange  float64           `json:"price_change"`
	OIChange     float64           `json:"oi_change"`
	VolumeChange float64           `json:"volume_change"`
	BidAskSpread float64           `json:"bid_ask_spread"`
}

// RankedCandidate is a Candidate with its comparative score. Scores are
// not normalized to any fixed range; only their ordering is meaningful.
type RankedCandidate struct {
	Candidate
	Score float64 `json:"score"`
}

// AnalysisResult is the full outcome of one Analyze call. Selected is
// non-nil iff Proceed is true and Ranked is non-empty; Ranked is sorted
// descending by score. The result carries no random identifiers so two
// calls under an injected clock are bit-identical; the per-call audit
// ID lives only in the log stream.
type AnalysisResult struct {
	Proceed           bool                `json:"proceed"`
	Reasons           []string            `json:"reasons,omitempty"`
	Trend             indicators.Snapshot `json:"trend"`
	Selected          *RankedCandidate    `json:"selected,omitempty"`
	Ranked            []RankedCandidate   `json:"ranked,omitempty"`
	ValidationDetails map[string]any      `json:"validation_details,omitempty"`
}
