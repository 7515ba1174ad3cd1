package analyzer

import (
	"math"
	"time"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/config"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/indicators"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/util"
)

// Delta floor schedule by exchange hour. Later in the session, demand
// higher-delta strikes; allow looser deltas further from ATM only down
// to the safety floor.
const (
	deltaFloorMorning   = 0.25 // before 11:00
	deltaFloorMidday    = 0.30 // from 11:00
	deltaFloorAfternoon = 0.35 // from 13:00
	deltaFloorLate      = 0.45 // from 14:00
	deltaFloorMin       = 0.20
	deltaStepDiscount   = 0.05 // per whole strike-step of distance from ATM

	// premiumDriftSteps bounds the strikes sampled by the fallback
	// trend heuristic to ±N strike-steps around ATM.
	premiumDriftSteps = 3
)

// Context holds everything filters, validators and the scorer need for
// one analysis pass, computed once so ATM and step values stay
// consistent across the call. It is read-only after construction.
type Context struct {
	snapshot *chain.Snapshot
	spot     float64
	ivRank   float64
	expiry   time.Time
	step     float64
	atm      float64
	hasATM   bool
	tech     indicators.Snapshot
	candles  []chain.Candle
	clock    Clock
	loc      *time.Location
	cfg      config.EngineConfig
}

// NewContext derives the analysis context from a snapshot and the
// caller-supplied market inputs. A zero inputs.StrikeStep means "infer
// from the chain"; a non-zero value always overrides inference. When
// candles are supplied the aggregator computes the technical snapshot,
// otherwise the premium-drift fallback heuristic runs.
func NewContext(
	snapshot *chain.Snapshot,
	inputs Inputs,
	cfg config.EngineConfig,
	clock Clock,
	aggregator indicators.Aggregator,
) *Context {
	if clock == nil {
		clock = RealClock()
	}
	c := &Context{
		snapshot: snapshot,
		spot:     inputs.Spot,
		ivRank:   inputs.IVRank,
		expiry:   inputs.Expiry,
		candles:  inputs.Candles,
		clock:    clock,
		loc:      cfg.Location(),
		cfg:      cfg,
	}

	c.step = inputs.StrikeStep
	if c.step <= 0 {
		c.step = c.inferStrikeStep()
	}

	reference := c.spot
	if ref, ok := snapshot.ReferencePrice(); ok {
		reference = ref
	}
	c.atm, c.hasATM = snapshot.NearestStrike(reference)

	if len(inputs.Candles) > 0 && aggregator != nil {
		c.tech = aggregator.Compute(inputs.Candles)
	} else {
		c.tech = c.premiumDriftTechnical()
	}

	return c
}

// ATMStrike returns the listed strike nearest the underlying reference
// price, false when the chain is empty.
func (c *Context) ATMStrike() (float64, bool) { return c.atm, c.hasATM }

// StrikeStep returns the caller-supplied or inferred strike increment.
func (c *Context) StrikeStep() float64 { return c.step }

// Spot returns the underlying spot price supplied by the caller.
func (c *Context) Spot() float64 { return c.spot }

// IVRank returns the caller-supplied IV rank in [0, 1].
func (c *Context) IVRank() float64 { return c.ivRank }

// Expiry returns the option expiry date.
func (c *Context) Expiry() time.Time { return c.expiry }

// Technical returns the trend/momentum/ADX readout for this pass.
func (c *Context) Technical() indicators.Snapshot { return c.tech }

// ADXMin returns the configured ADX gate threshold.
func (c *Context) ADXMin() float64 { return c.cfg.ADXMin }

// HistoricalCloses returns the close series of the supplied candles,
// oldest first, nil when no candles were supplied.
func (c *Context) HistoricalCloses() []float64 {
	if len(c.candles) == 0 {
		return nil
	}
	return chain.Closes(c.candles)
}

// now returns the current wall-clock time in the exchange timezone.
func (c *Context) now() time.Time {
	return c.clock.Now().In(c.loc)
}

// inferStrikeStep computes all consecutive listed-strike gaps and takes
// the most frequent rounded gap, defaulting when no gap repeats or the
// chain lists fewer than two strikes.
func (c *Context) inferStrikeStep() float64 {
	strikes := c.snapshot.Strikes()
	if len(strikes) < 2 {
		return c.cfg.DefaultStrikeStep
	}
	gaps := make([]float64, 0, len(strikes)-1)
	for i := 1; i < len(strikes); i++ {
		if gap := util.RoundToTick(strikes[i]-strikes[i-1], 0.05); gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if step, ok := util.ModalValue(gaps); ok {
		return step
	}
	return c.cfg.DefaultStrikeStep
}

// ATMRangePct returns the acceptable strike window as a fraction of
// spot, widening as the volatility regime rises.
func (c *Context) ATMRangePct() float64 {
	switch {
	case c.ivRank < 0.2:
		return 0.010
	case c.ivRank < 0.5:
		return 0.015
	default:
		return 0.025
	}
}

// ATMWindow returns the strike window width in price points.
func (c *Context) ATMWindow() float64 {
	return c.ATMRangePct() * c.spot
}

// MinDeltaFor returns the minimum acceptable |delta| for a strike: the
// session-hour base, reduced per whole strike-step of distance from
// ATM, never below the safety floor.
func (c *Context) MinDeltaFor(strike float64) float64 {
	base := deltaFloorMorning
	switch h := c.now().Hour(); {
	case h >= 14:
		base = deltaFloorLate
	case h >= 13:
		base = deltaFloorAfternoon
	case h >= 11:
		base = deltaFloorMidday
	}

	if c.hasATM && c.step > 0 {
		stepsAway := math.Floor(math.Abs(strike-c.atm) / c.step)
		base -= deltaStepDiscount * stepsAway
	}
	return math.Max(base, deltaFloorMin)
}

// ThetaLateEntry reports whether the expiry is today and the session
// has passed the late-entry cutoff, i.e. theta decay is too large to
// accept a new position.
func (c *Context) ThetaLateEntry() bool {
	now := c.now()
	expiry := c.expiry.In(c.loc)
	if now.Year() != expiry.Year() || now.YearDay() != expiry.YearDay() {
		return false
	}
	tod := float64(now.Hour()) + float64(now.Minute())/60.0
	return tod > c.cfg.CutoffHours()
}

// SnapToGrid maps an arbitrary target price onto the listed strike
// nearest the strike-step multiple of ATM closest to target. Returns
// false when the chain is empty. Snapping is idempotent: a listed
// strike snaps to itself, even when the listing sits off the step
// lattice.
func (c *Context) SnapToGrid(target float64) (float64, bool) {
	if !c.hasATM || c.step <= 0 {
		return 0, false
	}
	if _, ok := c.snapshot.Pair(target); ok {
		return target, true
	}
	gridPrice := c.atm + math.Round((target-c.atm)/c.step)*c.step
	return c.snapshot.NearestStrike(gridPrice)
}

// daysToExpiry returns the whole calendar days between now and expiry
// in the exchange timezone, zero on expiry day.
func (c *Context) daysToExpiry() int {
	now := c.now()
	exp := c.expiry.In(c.loc)
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
	expDay := time.Date(exp.Year(), exp.Month(), exp.Day(), 0, 0, 0, 0, c.loc)
	d := int(math.Round(expDay.Sub(nowDay).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

// premiumDriftTechnical is the fallback trend heuristic used when no
// candles are supplied: net premium drift of calls minus puts within
// ±premiumDriftSteps strike-steps of ATM. Rising call premium against
// falling put premium reads bullish, the mirror reads bearish.
func (c *Context) premiumDriftTechnical() indicators.Snapshot {
	if !c.hasATM || c.step <= 0 {
		return indicators.Neutral()
	}

	window := float64(premiumDriftSteps) * c.step
	drift := 0.0
	for _, strike := range c.snapshot.Strikes() {
		if math.Abs(strike-c.atm) > window {
			continue
		}
		pair, _ := c.snapshot.Pair(strike)
		if pair.Call != nil && pair.Call.PreviousClosePrice > 0 {
			drift += pair.Call.LastPrice - pair.Call.PreviousClosePrice
		}
		if pair.Put != nil && pair.Put.PreviousClosePrice > 0 {
			drift -= pair.Put.LastPrice - pair.Put.PreviousClosePrice
		}
	}

	switch {
	case drift > 0:
		return indicators.Snapshot{Trend: indicators.TrendBullish, Momentum: indicators.MomentumUp}
	case drift < 0:
		return indicators.Snapshot{Trend: indicators.TrendBearish, Momentum: indicators.MomentumDown}
	default:
		return indicators.Neutral()
	}
}
