package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
)

// FileProvider replays recorded market data from disk: a raw broker
// option-chain payload and a JSON candle series. It backs the offline
// runner and deterministic replays in tests.
type FileProvider struct {
	ChainPath   string
	CandlesPath string
}

// Compile-time interface compliance check.
var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a provider reading from the given paths. An
// empty candles path means no historical data is available.
func NewFileProvider(chainPath, candlesPath string) *FileProvider {
	return &FileProvider{ChainPath: chainPath, CandlesPath: candlesPath}
}

// GetOptionChain reads and normalizes the recorded chain payload. The
// instrument and expiry arguments identify what the recording should
// contain; a file provider trusts the recording.
func (p *FileProvider) GetOptionChain(ctx context.Context, _ string, _ time.Time) (*chain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p.ChainPath) // #nosec G304 -- path comes from user config
	if err != nil {
		return nil, fmt.Errorf("reading chain recording: %w", err)
	}
	return chain.ParsePayload(raw)
}

// GetHistoricalCandles reads the recorded candle series. A provider
// configured without one returns no candles and no error, matching the
// degraded-but-valid semantics of absent historical data.
func (p *FileProvider) GetHistoricalCandles(ctx context.Context, _, _ string, _, _ time.Time) ([]chain.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.CandlesPath == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(p.CandlesPath) // #nosec G304 -- path comes from user config
	if err != nil {
		return nil, fmt.Errorf("reading candle recording: %w", err)
	}
	var candles []chain.Candle
	if err := json.Unmarshal(raw, &candles); err != nil {
		return nil, fmt.Errorf("parsing candle recording: %w", err)
	}
	return candles, nil
}
