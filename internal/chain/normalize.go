package chain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyPayload is returned when a chain payload parses but lists no
// strikes at all.
var ErrEmptyPayload = errors.New("option chain payload contains no strikes")

// chainPayload mirrors the broker's option-chain REST response. Field
// names follow the wire format; nothing outside this file depends on it.
type chainPayload struct {
	Status string        `json:"status"`
	Data   []strikeEntry `json:"data"`
}

type strikeEntry struct {
	Expiry              string    `json:"expiry"`
	StrikePrice         float64   `json:"strike_price"`
	UnderlyingSpotPrice float64   `json:"underlying_spot_price"`
	CallOptions         *legEntry `json:"call_options"`
	PutOptions          *legEntry `json:"put_options"`
}

type legEntry struct {
	InstrumentKey string       `json:"instrument_key"`
	MarketData    marketData   `json:"market_data"`
	OptionGreeks  optionGreeks `json:"option_greeks"`
}

type marketData struct {
	Ltp        float64 `json:"ltp"`
	ClosePrice float64 `json:"close_price"`
	Volume     float64 `json:"volume"`
	PrevVolume float64 `json:"prev_volume"`
	Oi         float64 `json:"oi"`
	PrevOi     float64 `json:"prev_oi"`
	BidPrice   float64 `json:"bid_price"`
	AskPrice   float64 `json:"ask_price"`
}

type optionGreeks struct {
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Gamma float64 `json:"gamma"`
	Delta float64 `json:"delta"`
	Iv    float64 `json:"iv"`
}

// ParsePayload normalizes a raw broker option-chain response into a
// Snapshot. Strike keys are taken verbatim from the payload so the
// broker's own strike grid is preserved. Legs the broker omits stay
// nil.
func ParsePayload(raw []byte) (*Snapshot, error) {
	var payload chainPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parsing option chain payload: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, ErrEmptyPayload
	}

	strikes := make(map[float64]StrikePair, len(payload.Data))
	var reference float64
	for _, entry := range payload.Data {
		if entry.UnderlyingSpotPrice > 0 {
			reference = entry.UnderlyingSpotPrice
		}
		pair := strikes[entry.StrikePrice]
		if q := entry.CallOptions.toQuote(); q != nil {
			pair.Call = q
		}
		if q := entry.PutOptions.toQuote(); q != nil {
			pair.Put = q
		}
		strikes[entry.StrikePrice] = pair
	}
	return NewSnapshot(strikes, reference), nil
}

// toQuote converts one wire-format leg into the typed model. A leg with
// Greeks that are uniformly zero is treated as having none reported.
func (l *legEntry) toQuote() *OptionQuote {
	if l == nil {
		return nil
	}
	q := &OptionQuote{
		LastPrice:            l.MarketData.Ltp,
		ImpliedVolatility:    l.OptionGreeks.Iv,
		OpenInterest:         l.MarketData.Oi,
		Volume:               l.MarketData.Volume,
		PreviousClosePrice:   l.MarketData.ClosePrice,
		PreviousOpenInterest: l.MarketData.PrevOi,
		PreviousVolume:       l.MarketData.PrevVolume,
		TopBidPrice:          l.MarketData.BidPrice,
		TopAskPrice:          l.MarketData.AskPrice,
	}
	g := l.OptionGreeks
	if g.Delta != 0 || g.Gamma != 0 || g.Theta != 0 || g.Vega != 0 {
		q.Greeks = &Greeks{Delta: g.Delta, Gamma: g.Gamma, Theta: g.Theta, Vega: g.Vega}
	}
	return q
}
