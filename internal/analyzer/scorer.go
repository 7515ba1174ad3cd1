package analyzer

import (
	"math"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
)

// Scoring constants. Scores are comparative only; none of these map to
// any externally meaningful unit.
const (
	relSpreadFallback = 0.1  // relative spread assumed for crossed/zero quotes
	relSpreadFloor    = 0.01 // divisor floor for the liquidity term

	oiChangeScale   = 1000.0
	efficiencyScale = 30.0

	deltaWeight = 100.0
	gammaWeight = 10.0
	vegaWeight  = 2.0
	thetaWeight = 3.0
	// expiryWeekDTE doubles the time-decay penalty inside expiry week
	expiryWeekDTE = 3

	intradayLiquidityWeight   = 0.35
	intradayMomentumWeight    = 0.35
	positionalLiquidityWeight = 0.25
	positionalMomentumWeight  = 0.25
	greeksWeightEarly         = 3.0
	greeksWeightLate          = 4.0 // after 13:00 exchange time
	greeksWeightCutoverHour   = 13

	ivOutlierZ           = 1.5
	ivOutlierDampening   = 0.90
	skewTiltRatio        = 1.10
	skewTiltBoost        = 1.10
	histVolRichRatio     = 1.5
	histVolDampening     = 0.9
	ivNeighborSteps      = 3
	tradingDaysPerYear   = 252.0
	itmPreferencePenalty = 0.7
)

// atmPreferenceTiers maps distance-from-ATM (as a fraction of the ATM
// window) onto a bonus. Nearest tier wins.
var atmPreferenceTiers = []struct {
	maxWindowRatio float64
	bonus          float64
}{
	{0.1, 100},
	{0.3, 80},
	{0.6, 50},
	{1.0, 20},
}

// Scorer assigns comparative desirability scores to filtered
// candidates. Chain-wide terms (skew averages, historical volatility)
// are computed once at construction and reused for every candidate.
type Scorer struct {
	ctx        *Context
	avgCallIV  float64
	avgPutIV   float64
	histVol    float64
	hasHistVol bool
}

// NewScorer builds a scorer bound to one analysis context.
func NewScorer(ctx *Context) *Scorer {
	s := &Scorer{ctx: ctx}
	s.avgCallIV = meanSideIV(ctx.snapshot, chain.SideCall)
	s.avgPutIV = meanSideIV(ctx.snapshot, chain.SidePut)
	s.histVol, s.hasHistVol = annualizedHistoricalVol(ctx.HistoricalCloses())
	return s
}

// Score composes the liquidity, momentum, Greeks, efficiency and ATM
// preference terms under the profile's weights, then applies the IV
// dispersion, skew tilt and historical-volatility multipliers and the
// caller's signal strength.
func (s *Scorer) Score(c Candidate, profile StrategyProfile, signal Signal, strength float64) float64 {
	q := c.Quote

	liquidityW, momentumW := positionalLiquidityWeight, positionalMomentumWeight
	if profile == ProfileIntraday {
		liquidityW, momentumW = intradayLiquidityWeight, intradayMomentumWeight
	}
	greeksW := greeksWeightEarly
	if s.ctx.now().Hour() >= greeksWeightCutoverHour {
		greeksW = greeksWeightLate
	}

	total := s.liquidityTerm(c)*liquidityW +
		s.momentumTerm(c)*momentumW +
		s.greeksTerm(c)*greeksW +
		s.efficiencyTerm(c) +
		s.atmPreferenceTerm(c, signal)

	if z, ok := s.localIVZScore(c.Strike, q.ImpliedVolatility); ok && math.Abs(z) > ivOutlierZ {
		total *= ivOutlierDampening
	}
	total *= s.skewMultiplier(signal)
	if s.hasHistVol && s.histVol > 0 && q.ImpliedVolatility/s.histVol > histVolRichRatio {
		total *= histVolDampening
	}

	return total * strength
}

// liquidityTerm rewards open interest and turnover, discounted by the
// relative bid-ask spread. Crossed or zero quotes take a fallback
// spread so the division cannot blow up.
func (s *Scorer) liquidityTerm(c Candidate) float64 {
	q := c.Quote
	relSpread := relSpreadFallback
	if c.BidAskSpread > 0 && q.LastPrice > 0 {
		relSpread = c.BidAskSpread / q.LastPrice
	}
	return (q.OpenInterest*q.Volume + math.Abs(c.VolumeChange)) / math.Max(relSpread, relSpreadFloor)
}

// momentumTerm scores OI build-up, plus the raw premium move when delta
// is non-negative and the move itself is positive. The accumulation is
// deliberately one-sided: negative moves are never subtracted here.
func (s *Scorer) momentumTerm(c Candidate) float64 {
	term := c.OIChange / oiChangeScale
	if c.Quote.Delta() >= 0 && c.PriceChange > 0 {
		term += c.PriceChange
	}
	return term
}

// greeksTerm weighs the sensitivities, doubling the theta penalty in
// expiry week. Missing Greeks contribute zero.
func (s *Scorer) greeksTerm(c Candidate) float64 {
	g := c.Quote.Greeks
	if g == nil {
		return 0
	}
	thetaPenalty := math.Abs(g.Theta)
	if s.ctx.daysToExpiry() < expiryWeekDTE {
		thetaPenalty *= 2.0
	}
	return g.Delta*deltaWeight + g.Gamma*gammaWeight + g.Vega*vegaWeight - thetaPenalty*thetaWeight
}

// efficiencyTerm rewards strikes with a higher realized premium return.
func (s *Scorer) efficiencyTerm(c Candidate) float64 {
	if c.Quote.LastPrice <= 0 {
		return 0
	}
	return (c.PriceChange / c.Quote.LastPrice) * efficiencyScale
}

// atmPreferenceTerm awards a tiered bonus by distance from ATM relative
// to the ATM window, softened when the candidate sits on the
// in-the-money side for this signal. The hard ITM exclusion already
// happened in filtering; this is only a soft penalty.
func (s *Scorer) atmPreferenceTerm(c Candidate, signal Signal) float64 {
	atm, ok := s.ctx.ATMStrike()
	window := s.ctx.ATMWindow()
	if !ok || window <= 0 {
		return 0
	}

	ratio := math.Abs(c.Strike-atm) / window
	bonus := 0.0
	for _, tier := range atmPreferenceTiers {
		if ratio <= tier.maxWindowRatio {
			bonus = tier.bonus
			break
		}
	}

	itmSide := (signal == SignalCall && c.Strike < atm) || (signal == SignalPut && c.Strike > atm)
	if itmSide {
		bonus *= itmPreferencePenalty
	}
	return bonus
}

// localIVZScore computes the z-score of a strike's IV against the
// call-side IVs of strikes within ivNeighborSteps strike-steps. The
// call side is sampled even when scoring puts, matching the behavior
// callers already calibrated against.
func (s *Scorer) localIVZScore(strike, iv float64) (float64, bool) {
	step := s.ctx.StrikeStep()
	if step <= 0 || iv <= 0 {
		return 0, false
	}
	window := float64(ivNeighborSteps) * step

	var ivs []float64
	for _, k := range s.ctx.snapshot.Strikes() {
		if math.Abs(k-strike) > window {
			continue
		}
		if q := s.ctx.snapshot.Quote(k, chain.SideCall); q != nil && q.ImpliedVolatility > 0 {
			ivs = append(ivs, q.ImpliedVolatility)
		}
	}
	if len(ivs) < 2 {
		return 0, false
	}

	mean, std := meanStd(ivs)
	if std == 0 {
		return 0, false
	}
	return (iv - mean) / std, true
}

// skewMultiplier rides the volatility skew: when the chain-wide mean IV
// of the signal's own side exceeds the other side by the tilt ratio,
// that side's scores get boosted.
func (s *Scorer) skewMultiplier(signal Signal) float64 {
	switch {
	case signal == SignalCall && s.avgPutIV > 0 && s.avgCallIV > s.avgPutIV*skewTiltRatio:
		return skewTiltBoost
	case signal == SignalPut && s.avgCallIV > 0 && s.avgPutIV > s.avgCallIV*skewTiltRatio:
		return skewTiltBoost
	default:
		return 1.0
	}
}

// meanSideIV averages the positive IVs of one chain side, zero when the
// side has no priced quotes.
func meanSideIV(snapshot *chain.Snapshot, side chain.Side) float64 {
	sum, n := 0.0, 0
	for _, strike := range snapshot.Strikes() {
		if q := snapshot.Quote(strike, side); q != nil && q.ImpliedVolatility > 0 {
			sum += q.ImpliedVolatility
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// annualizedHistoricalVol derives realized volatility (in IV percentage
// points) from log returns of the close series. NaN/Inf inputs are
// filtered the same way invalid IV history is elsewhere.
func annualizedHistoricalVol(closes []float64) (float64, bool) {
	var returns []float64
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			continue
		}
		r := math.Log(cur / prev)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		returns = append(returns, r)
	}
	if len(returns) < 2 {
		return 0, false
	}

	_, std := meanStd(returns)
	return std * math.Sqrt(tradingDaysPerYear) * 100, true
}

// meanStd returns the mean and population standard deviation of values.
func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
