package analyzer

import (
	"math"
	"sort"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
)

// Moneyness bounds relative to ATM. Any strike whose distance from ATM
// exceeds 20% of ATM is excluded regardless of side; the deep-ITM and
// deep-OTM checks below are complementary by construction.
const (
	deepITMRatio = 1.2
	deepOTMRatio = 0.8
)

// FilteredStrikes produces the candidate set for one side of a gated
// chain: priced quotes only, above the time-of-day delta floor, inside
// the moneyness bounds, and inside the enhanced ATM window. Calls are
// never selected below ATM and puts never above ("ATM or slightly OTM,
// never ITM"). The result is sorted by absolute distance from ATM.
func FilteredStrikes(ctx *Context, signal Signal) []Candidate {
	atm, ok := ctx.ATMStrike()
	if !ok {
		return nil
	}

	side := signal.Side()
	window := ctx.ATMWindow()
	var candidates []Candidate

	for _, strike := range ctx.snapshot.Strikes() {
		quote := ctx.snapshot.Quote(strike, side)
		if !quote.Priced() {
			continue
		}
		if math.Abs(quote.Delta()) < ctx.MinDeltaFor(strike) {
			continue
		}
		if deepInTheMoney(strike, atm, signal) || deepOutOfTheMoney(strike, atm, signal) {
			continue
		}
		if !withinATMWindow(strike, atm, window, signal) {
			continue
		}
		candidates = append(candidates, newCandidate(strike, quote))
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := math.Abs(candidates[i].Strike - atm)
		dj := math.Abs(candidates[j].Strike - atm)
		if di != dj {
			return di < dj
		}
		return candidates[i].Strike < candidates[j].Strike
	})
	return candidates
}

// newCandidate enriches a quote with the deltas the scorer consumes.
func newCandidate(strike float64, quote *chain.OptionQuote) Candidate {
	return Candidate{
		Strike:       strike,
		Quote:        *quote,
		PriceChange:  quote.LastPrice - quote.PreviousClosePrice,
		OIChange:     quote.OpenInterest - quote.PreviousOpenInterest,
		VolumeChange: quote.Volume - quote.PreviousVolume,
		BidAskSpread: math.Abs(quote.TopAskPrice - quote.TopBidPrice),
	}
}

func deepInTheMoney(strike, atm float64, signal Signal) bool {
	if signal == SignalPut {
		return strike < deepOTMRatio*atm
	}
	return strike > deepITMRatio*atm
}

func deepOutOfTheMoney(strike, atm float64, signal Signal) bool {
	if signal == SignalPut {
		return strike > deepITMRatio*atm
	}
	return strike < deepOTMRatio*atm
}

// withinATMWindow enforces side discipline: calls in [ATM, ATM+window],
// puts in [ATM−window, ATM].
func withinATMWindow(strike, atm, window float64, signal Signal) bool {
	if signal == SignalPut {
		return strike >= atm-window && strike <= atm
	}
	return strike >= atm && strike <= atm+window
}
