package analyzer

import "math"

// strikeGuidanceNote is attached verbatim to every selection snapshot.
const strikeGuidanceNote = "CE/PE strikes should be ATM or slightly OTM, never ITM"

// ladderDepth is how many strike-steps beyond ATM the recommended
// ladder reaches in the signal's direction.
const ladderDepth = 2

// CandidateDetail is the per-candidate audit record: every number a
// skip-reason formatter might render, precomputed.
type CandidateDetail struct {
	Strike          float64 `json:"strike_price"`
	DistanceFromATM float64 `json:"distance_from_atm"`
	WindowMultiple  float64 `json:"window_multiple"`
	Delta           float64 `json:"delta"`
	IV              float64 `json:"iv"`
	LastPrice       float64 `json:"last_price"`
}

// SelectionSnapshot is the explainability payload describing one
// selection pass end to end.
type SelectionSnapshot struct {
	TotalStrikes       int               `json:"total_strikes"`
	FilteredCount      int               `json:"filtered_count"`
	RankedCount        int               `json:"ranked_count"`
	TopScore           float64           `json:"top_score"`
	Candidates         []CandidateDetail `json:"candidates,omitempty"`
	RecommendedStrikes []float64         `json:"recommended_strikes,omitempty"`
	Note               string            `json:"note"`
}

// BuildSelectionSnapshot assembles the audit trail for one pass over
// the chain, including the recommended strike ladder snapped to
// actually-listed strikes.
func BuildSelectionSnapshot(ctx *Context, signal Signal, filtered []Candidate, ranked []RankedCandidate) SelectionSnapshot {
	snap := SelectionSnapshot{
		TotalStrikes:  ctx.snapshot.Len(),
		FilteredCount: len(filtered),
		RankedCount:   len(ranked),
		Note:          strikeGuidanceNote,
	}
	if len(ranked) > 0 {
		snap.TopScore = ranked[0].Score
	}

	atm, ok := ctx.ATMStrike()
	if !ok {
		return snap
	}
	window := ctx.ATMWindow()

	for _, c := range filtered {
		detail := CandidateDetail{
			Strike:          c.Strike,
			DistanceFromATM: math.Abs(c.Strike - atm),
			Delta:           c.Quote.Delta(),
			IV:              c.Quote.ImpliedVolatility,
			LastPrice:       c.Quote.LastPrice,
		}
		if window > 0 {
			detail.WindowMultiple = detail.DistanceFromATM / window
		}
		snap.Candidates = append(snap.Candidates, detail)
	}

	snap.RecommendedStrikes = recommendedLadder(ctx, signal, atm)
	return snap
}

// recommendedLadder returns [ATM, ATM±1 step, ATM±2 steps] in the
// signal's direction, each snapped to a listed strike, de-duplicated in
// order.
func recommendedLadder(ctx *Context, signal Signal, atm float64) []float64 {
	direction := 1.0
	if signal == SignalPut {
		direction = -1.0
	}

	var ladder []float64
	seen := make(map[float64]bool)
	for i := 0; i <= ladderDepth; i++ {
		target := atm + direction*float64(i)*ctx.StrikeStep()
		strike, ok := ctx.SnapToGrid(target)
		if !ok || seen[strike] {
			continue
		}
		seen[strike] = true
		ladder = append(ladder, strike)
	}
	return ladder
}
