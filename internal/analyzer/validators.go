package analyzer

import (
	"fmt"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/indicators"
)

// GateResult carries the human-readable failure reasons and the
// structured detail map produced by one gate run. Details are attached
// even on a pass so downstream consumers can render explanations
// without re-deriving any number.
type GateResult struct {
	Reasons []string
	Details map[string]any
}

// Passed reports whether the gate produced no failure reasons.
func (g GateResult) Passed() bool { return len(g.Reasons) == 0 }

func (g *GateResult) fail(reason string) {
	g.Reasons = append(g.Reasons, reason)
}

// GlobalGate runs the environment-level checks that apply regardless of
// signal direction: the IV rank band, the expiry-day late-entry cutoff,
// and the ADX minimum when an ADX reading exists. A missing ADX passes.
func GlobalGate(ctx *Context) GateResult {
	g := GateResult{Details: map[string]any{}}
	tech := ctx.Technical()

	// Attach the current readout unconditionally for downstream
	// consumers, failure or not.
	g.Details["trend"] = tech.Trend
	g.Details["momentum"] = tech.Momentum
	g.Details["iv_rank"] = ctx.IVRank()
	if tech.ADX != nil {
		g.Details["adx"] = map[string]any{
			"value":   *tech.ADX,
			"minimum": ctx.ADXMin(),
		}
	}

	if ctx.IVRank() < 0 || ctx.IVRank() > ctx.cfg.IVRankMax {
		g.fail(fmt.Sprintf("IV rank outside range [0.00, %.2f]: %.2f", ctx.cfg.IVRankMax, ctx.IVRank()))
	}

	if ctx.ThetaLateEntry() {
		g.Details["theta_late_entry"] = true
		g.fail("theta decay too high for a new entry this late on expiry day")
	}

	if tech.ADX != nil && *tech.ADX < ctx.ADXMin() {
		g.fail(fmt.Sprintf("ADX %.1f below minimum %.1f", *tech.ADX, ctx.ADXMin()))
	}

	return g
}

// DirectionGate checks that the detected trend and momentum agree with
// the signal. Each failure records both a reason string and a
// structured sub-object so the caller can render a precise explanation.
func DirectionGate(ctx *Context, signal Signal) GateResult {
	g := GateResult{Details: map[string]any{}}
	tech := ctx.Technical()

	g.Details["trend"] = tech.Trend
	g.Details["momentum"] = tech.Momentum

	if tech.Trend == indicators.TrendNeutral {
		g.fail("trend is neutral")
	}

	mismatch := (signal == SignalCall && tech.Trend == indicators.TrendBearish) ||
		(signal == SignalPut && tech.Trend == indicators.TrendBullish)
	if mismatch {
		g.Details["trend_mismatch"] = map[string]any{
			"signal": signal,
			"trend":  tech.Trend,
		}
		g.fail(fmt.Sprintf("%s signal conflicts with %s trend", signal, tech.Trend))
	}

	if tech.Momentum == indicators.MomentumFlat {
		g.fail("momentum is flat")
	}

	if tech.ADX != nil {
		g.Details["adx"] = map[string]any{
			"value":   *tech.ADX,
			"minimum": ctx.ADXMin(),
		}
		if *tech.ADX < ctx.ADXMin() {
			g.fail(fmt.Sprintf("ADX %.1f below minimum %.1f", *tech.ADX, ctx.ADXMin()))
		}
	}

	return g
}
