// Command analyzer runs one offline strike-selection pass over a
// recorded option-chain snapshot and prints the full analysis result as
// JSON. It exists for replaying recorded market data; live surfaces
// feed the analyzer package directly.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/analyzer"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/config"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/journal"
	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/provider"
)

func main() {
	var (
		configPath string
		instrument string
		signalArg  string
		profileArg string
		spot       float64
		ivRank     float64
		expiryArg  string
		strikeStep float64
		strength   float64
	)
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&instrument, "instrument", "NIFTY", "Underlying instrument")
	flag.StringVar(&signalArg, "signal", "call", "Trade signal: call | put")
	flag.StringVar(&profileArg, "profile", "intraday", "Strategy profile: intraday | positional")
	flag.Float64Var(&spot, "spot", 0, "Underlying spot price")
	flag.Float64Var(&ivRank, "iv-rank", 0, "IV rank in [0,1]")
	flag.StringVar(&expiryArg, "expiry", "", "Option expiry (YYYY-MM-DD)")
	flag.Float64Var(&strikeStep, "strike-step", 0, "Strike step override (0 = infer)")
	flag.Float64Var(&strength, "strength", 1.0, "Signal strength weight")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Environment.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	signal, err := parseSignal(signalArg)
	if err != nil {
		logger.Fatalf("Invalid signal: %v", err)
	}
	profile := analyzer.ProfilePositional
	if profileArg == string(analyzer.ProfileIntraday) {
		profile = analyzer.ProfileIntraday
	}

	expiry := time.Now()
	if expiryArg != "" {
		expiry, err = time.ParseInLocation("2006-01-02", expiryArg, cfg.Engine.Location())
		if err != nil {
			logger.Fatalf("Invalid expiry: %v", err)
		}
	}

	mkt := provider.NewCircuitBreakerProvider(
		provider.NewRetryProvider(
			provider.NewFileProvider(cfg.Data.ChainPath, cfg.Data.CandlesPath),
			log.New(logger.Writer(), "", 0),
		),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		snapshot *chain.Snapshot
		candles  []chain.Candle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = mkt.GetOptionChain(gctx, instrument, expiry)
		return err
	})
	g.Go(func() error {
		var err error
		candles, err = mkt.GetHistoricalCandles(gctx, instrument, "day", expiry.AddDate(0, -3, 0), expiry)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Fatalf("Failed to load market data: %v", err)
	}

	if spot == 0 {
		if ref, ok := snapshot.ReferencePrice(); ok {
			spot = ref
		}
	}

	inputs := analyzer.Inputs{
		Spot:           spot,
		IVRank:         ivRank,
		Expiry:         expiry,
		StrikeStep:     strikeStep,
		Candles:        candles,
		SignalStrength: strength,
	}
	a := analyzer.NewWithDeps(snapshot, inputs, cfg.Engine, nil, nil, logger)
	result := a.Analyze(signal, profile)

	if cfg.Data.JournalPath != "" {
		if err := recordOutcome(cfg.Data.JournalPath, instrument, signal, profile, inputs, result); err != nil {
			logger.Warnf("Failed to journal analysis: %v", err)
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))

	if !result.Proceed {
		os.Exit(1)
	}
}

func recordOutcome(
	path, instrument string,
	signal analyzer.Signal,
	profile analyzer.StrategyProfile,
	inputs analyzer.Inputs,
	result *analyzer.AnalysisResult,
) error {
	j, err := journal.NewJournal(path)
	if err != nil {
		return err
	}

	rec := journal.Record{
		Timestamp:   time.Now(),
		Instrument:  instrument,
		Signal:      string(signal),
		Profile:     string(profile),
		Proceed:     result.Proceed,
		Reasons:     result.Reasons,
		RankedCount: len(result.Ranked),
		Spot:        inputs.Spot,
		IVRank:      inputs.IVRank,
	}
	if result.Selected != nil {
		rec.SelectedStrike = result.Selected.Strike
		rec.Score = result.Selected.Score
	}

	return j.Append(rec)
}

func parseSignal(arg string) (analyzer.Signal, error) {
	switch arg {
	case string(analyzer.SignalCall):
		return analyzer.SignalCall, nil
	case string(analyzer.SignalPut):
		return analyzer.SignalPut, nil
	default:
		return "", fmt.Errorf("must be %q or %q, got %q", analyzer.SignalCall, analyzer.SignalPut, arg)
	}
}
