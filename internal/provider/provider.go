// Package provider defines the market-data collaborators the analysis
// engine is fed from: an option-chain fetcher and a historical-candle
// fetcher. The engine itself performs no I/O; callers fetch through a
// Provider and hand the results in.
package provider

import (
	"context"
	"time"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
)

// Provider fetches the market data one analysis pass needs.
type Provider interface {
	// GetOptionChain returns the normalized chain snapshot for one
	// instrument and expiry.
	GetOptionChain(ctx context.Context, instrument string, expiry time.Time) (*chain.Snapshot, error)
	// GetHistoricalCandles returns OHLCV bars ordered oldest first.
	GetHistoricalCandles(ctx context.Context, instrument, interval string, from, to time.Time) ([]chain.Candle, error)
}
