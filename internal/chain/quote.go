// Package chain defines the strongly-typed option-chain snapshot model.
// Broker payloads are normalized into this model exactly once at the
// construction boundary; the analysis engine never sees raw dynamic maps.
package chain

// Greeks contains option price sensitivities as reported by the broker.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// OptionQuote is one side (call or put) of a listed strike. All numeric
// fields are non-negative except Delta (signed) and Theta (typically
// negative). Quotes are immutable once read from a snapshot; Greeks is
// nil when the broker did not supply them.
type OptionQuote struct {
	LastPrice            float64 `json:"last_price"`
	ImpliedVolatility    float64 `json:"implied_volatility"`
	OpenInterest         float64 `json:"open_interest"`
	Volume               float64 `json:"volume"`
	Greeks               *Greeks `json:"greeks,omitempty"`
	PreviousClosePrice   float64 `json:"previous_close_price"`
	PreviousOpenInterest float64 `json:"previous_open_interest"`
	PreviousVolume       float64 `json:"previous_volume"`
	TopBidPrice          float64 `json:"top_bid_price"`
	TopAskPrice          float64 `json:"top_ask_price"`
}

// Delta returns the signed delta, or 0 when Greeks are missing.
func (q *OptionQuote) Delta() float64 {
	if q == nil || q.Greeks == nil {
		return 0
	}
	return q.Greeks.Delta
}

// Priced reports whether the quote carries a usable last price and IV.
// Quotes failing this check are stale or never traded and are skipped
// by candidate filtering.
func (q *OptionQuote) Priced() bool {
	return q != nil && q.LastPrice > 0 && q.ImpliedVolatility > 0
}
