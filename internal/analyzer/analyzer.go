// Package analyzer implements the strike selection and ranking engine:
// a pure, synchronous decision pipeline that takes an option-chain
// snapshot plus market context and decides whether a directional trade
// should proceed and which listed strike is the best candidate, with a
// comparative score and an auditable explanation.
//
// The engine holds no cross-call state and performs no I/O; aside from
// the injected clock it is a deterministic function of its inputs, so
// concurrent callers need no locking.
package analyzer

import (
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/config"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/indicators"
)

// Inputs carries the caller-supplied market context for one analysis
// pass. The caller owns the snapshot and candles; the engine never
// mutates them.
type Inputs struct {
	// Spot is the underlying spot price.
	Spot float64
	// IVRank is the IV percentile within its recent range, in [0, 1].
	IVRank float64
	// Expiry is the option expiry date.
	Expiry time.Time
	// StrikeStep overrides strike-step inference when non-zero.
	StrikeStep float64
	// Candles is the historical series feeding the indicator
	// aggregator; nil degrades to the premium-drift fallback.
	Candles []chain.Candle
	// SignalStrength is the caller's confidence weight; values <= 0
	// default to 1.0.
	SignalStrength float64
}

// ChainAnalyzer wires the gates, filters, scorer and guidance layers
// behind the Analyze contract.
type ChainAnalyzer struct {
	snapshot   *chain.Snapshot
	inputs     Inputs
	cfg        config.EngineConfig
	clock      Clock
	aggregator indicators.Aggregator
	logger     *logrus.Logger
}

// New creates an analyzer with the system clock, the default go-talib
// indicator aggregator and no log output.
func New(snapshot *chain.Snapshot, inputs Inputs, cfg config.EngineConfig) *ChainAnalyzer {
	return NewWithDeps(snapshot, inputs, cfg, nil, nil, nil)
}

// NewWithDeps creates an analyzer with explicit dependencies. A nil
// clock uses the system time, a nil aggregator uses the go-talib
// default, and a nil logger discards output.
func NewWithDeps(
	snapshot *chain.Snapshot,
	inputs Inputs,
	cfg config.EngineConfig,
	clock Clock,
	aggregator indicators.Aggregator,
	logger *logrus.Logger,
) *ChainAnalyzer {
	if clock == nil {
		clock = RealClock()
	}
	if aggregator == nil {
		aggregator = indicators.NewTalibAggregator()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &ChainAnalyzer{
		snapshot:   snapshot,
		inputs:     inputs,
		cfg:        cfg,
		clock:      clock,
		aggregator: aggregator,
		logger:     logger,
	}
}

// Analyze runs the full gating, filtering, scoring and guidance
// pipeline for one signal. It never panics under well-formed input: a
// chain with no strikes, missing Greeks, missing candles or a missing
// ADX all degrade to a Proceed=false result or a neutral value.
func (a *ChainAnalyzer) Analyze(signal Signal, profile StrategyProfile) *AnalysisResult {
	ctx := a.buildContext()
	result := &AnalysisResult{
		Trend:             ctx.Technical(),
		ValidationDetails: map[string]any{},
	}
	// The audit ID correlates log lines for one pass; it stays out of
	// the result so identical inputs produce identical results.
	log := a.logger.WithFields(logrus.Fields{
		"analysis_id": uuid.NewString(),
		"signal":      signal,
		"profile":     profile,
	})

	if _, ok := ctx.ATMStrike(); !ok {
		result.Reasons = append(result.Reasons, "no strikes listed in chain")
		log.Warn("analysis skipped: empty option chain")
		return result
	}

	global := GlobalGate(ctx)
	mergeDetails(result.ValidationDetails, global.Details)
	if !global.Passed() {
		result.Reasons = global.Reasons
		log.WithField("reasons", global.Reasons).Info("global gate failed")
		return result
	}

	direction := DirectionGate(ctx, signal)
	mergeDetails(result.ValidationDetails, direction.Details)
	if !direction.Passed() {
		result.Reasons = direction.Reasons
		log.WithField("reasons", direction.Reasons).Info("direction gate failed")
		return result
	}

	filtered := FilteredStrikes(ctx, signal)
	if len(filtered) == 0 {
		result.Reasons = append(result.Reasons, "no viable strike")
		result.ValidationDetails["selection"] = BuildSelectionSnapshot(ctx, signal, nil, nil)
		log.Info("no strike passed filtering")
		return result
	}

	strength := a.inputs.SignalStrength
	if strength <= 0 {
		strength = 1.0
	}

	scorer := NewScorer(ctx)
	ranked := make([]RankedCandidate, 0, len(filtered))
	for _, c := range filtered {
		ranked = append(ranked, RankedCandidate{
			Candidate: c,
			Score:     scorer.Score(c, profile, signal, strength),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	result.Proceed = true
	result.Ranked = ranked
	result.Selected = &ranked[0]
	result.ValidationDetails["selection"] = BuildSelectionSnapshot(ctx, signal, filtered, ranked)

	log.WithFields(logrus.Fields{
		"selected_strike": result.Selected.Strike,
		"score":           result.Selected.Score,
		"candidates":      len(ranked),
	}).Info("strike selected")
	return result
}

// Trend exposes just the technical readout for callers, e.g. a risk
// manager deciding exits, without running filtering or scoring. It
// still builds a full context so ATM-relative fallbacks behave exactly
// as in Analyze.
func (a *ChainAnalyzer) Trend() indicators.Snapshot {
	return a.buildContext().Technical()
}

func (a *ChainAnalyzer) buildContext() *Context {
	return NewContext(a.snapshot, a.inputs, a.cfg, a.clock, a.aggregator)
}

// mergeDetails copies gate details into the result map. Later gates win
// on key collisions; the shared trend/momentum/adx keys carry the same
// shape and values in every gate, so overwriting is harmless.
func mergeDetails(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
