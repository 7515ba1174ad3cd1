package provider

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
)

// RetryConfig controls the retry behavior of a RetryProvider.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
}

// DefaultRetryConfig covers the common case of a briefly unavailable
// data feed without holding an analysis cycle hostage.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     15 * time.Second,
	Timeout:        1 * time.Minute,
}

// RetryProvider wraps a Provider with bounded, jittered retries for
// transient upstream failures. Non-transient errors surface
// immediately.
type RetryProvider struct {
	provider Provider
	logger   *log.Logger
	config   RetryConfig
}

// Compile-time interface compliance check.
var _ Provider = (*RetryProvider)(nil)

// NewRetryProvider creates a RetryProvider. A nil logger falls back to
// the standard logger. Omitting config uses DefaultRetryConfig.
func NewRetryProvider(p Provider, logger *log.Logger, config ...RetryConfig) *RetryProvider {
	cfg := DefaultRetryConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RetryProvider{provider: p, logger: logger, config: cfg}
}

// execRetry is a generic helper running fn with retry semantics.
func execRetry[T any](r *RetryProvider, ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	opCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	var lastErr error
	backoff := r.config.InitialBackoff

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if err := opCtx.Err(); err != nil {
			return zero, fmt.Errorf("%s timed out after %v: %w", op, r.config.Timeout, err)
		}

		res, err := fn(opCtx)
		if err == nil {
			return res, nil
		}

		lastErr = err
		r.logger.Printf("%s attempt %d/%d failed: %v", op, attempt+1, r.config.MaxRetries+1, err)

		if !isTransientError(err) || attempt == r.config.MaxRetries {
			break
		}

		select {
		case <-time.After(backoff):
			backoff = r.nextBackoff(backoff)
		case <-opCtx.Done():
			return zero, fmt.Errorf("%s timed out during backoff: %w", op, opCtx.Err())
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", op, r.config.MaxRetries+1, lastErr)
}

func (r *RetryProvider) nextBackoff(current time.Duration) time.Duration {
	backoff := time.Duration(float64(current) * 1.5)
	if backoff > r.config.MaxBackoff {
		backoff = r.config.MaxBackoff
	}

	maxJitter := int64(backoff / 4)
	if maxJitter > 0 {
		jitterVal, err := rand.Int(rand.Reader, big.NewInt(maxJitter))
		if err != nil {
			r.logger.Printf("failed to generate jitter: %v", err)
		} else {
			backoff += time.Duration(jitterVal.Int64())
		}
	}

	return backoff
}

// isTransientError matches error text against patterns worth retrying.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	transientPatterns := []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
		"server error",
		"rate limit",
		"429",
		"502",
		"503",
		"504",
		"network",
		"dns",
		"tcp",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// GetOptionChain retries the underlying chain fetch on transient
// failures.
func (r *RetryProvider) GetOptionChain(ctx context.Context, instrument string, expiry time.Time) (*chain.Snapshot, error) {
	return execRetry(r, ctx, "option chain fetch", func(c context.Context) (*chain.Snapshot, error) {
		return r.provider.GetOptionChain(c, instrument, expiry)
	})
}

// GetHistoricalCandles retries the underlying candle fetch on
// transient failures.
func (r *RetryProvider) GetHistoricalCandles(ctx context.Context, instrument, interval string, from, to time.Time) ([]chain.Candle, error) {
	return execRetry(r, ctx, "historical candle fetch", func(c context.Context) ([]chain.Candle, error) {
		return r.provider.GetHistoricalCandles(c, instrument, interval, from, to)
	})
}
