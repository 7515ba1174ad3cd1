package provider

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"github.com/shubhamtaywade82/algo-trading-api-sub000/internal/chain"
)

// CircuitBreakerProvider wraps a Provider with circuit breaker
// functionality so a flapping upstream cannot stall every analysis
// cycle behind timeouts.
type CircuitBreakerProvider struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
}

// Compile-time interface compliance check.
var _ Provider = (*CircuitBreakerProvider)(nil)

// CircuitBreakerSettings configures circuit breaker behavior.
type CircuitBreakerSettings struct {
	MaxRequests  uint32        // Max requests when half-open
	Interval     time.Duration // Reset counts interval
	Timeout      time.Duration // Open circuit duration
	MinRequests  uint32        // Min requests before tripping
	FailureRatio float64       // Failure ratio threshold
}

// NewCircuitBreakerProvider creates a CircuitBreakerProvider with
// sensible defaults.
func NewCircuitBreakerProvider(p Provider) *CircuitBreakerProvider {
	return NewCircuitBreakerProviderWithSettings(p, CircuitBreakerSettings{
		MaxRequests:  3,                // Allow 3 requests when half-open
		Interval:     60 * time.Second, // Reset counts every minute
		Timeout:      30 * time.Second, // Open circuit for 30 seconds
		MinRequests:  5,                // Minimum requests before tripping
		FailureRatio: 0.6,              // Trip if 60% failure rate
	})
}

// NewCircuitBreakerProviderWithSettings creates a
// CircuitBreakerProvider with custom settings.
func NewCircuitBreakerProviderWithSettings(p Provider, settings CircuitBreakerSettings) *CircuitBreakerProvider {
	gbSettings := gobreaker.Settings{
		Name:        "MarketDataCircuitBreaker",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 || counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s state changed from %s to %s", name, from, to)
		},
	}

	return &CircuitBreakerProvider{
		provider: p,
		breaker:  gobreaker.NewCircuitBreaker(gbSettings),
	}
}

// execCircuitBreaker is a generic helper for circuit breaker wrapper
// methods.
func execCircuitBreaker[T any](
	breaker *gobreaker.CircuitBreaker,
	p Provider,
	fn func(Provider) (T, error),
) (T, error) {
	var zero T
	res, err := breaker.Execute(func() (interface{}, error) { return fn(p) })
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(T)
	if !ok {
		return zero, errors.New("circuit breaker: type assertion failed")
	}
	return v, nil
}

// GetOptionChain wraps the underlying provider call with the circuit
// breaker.
func (c *CircuitBreakerProvider) GetOptionChain(ctx context.Context, instrument string, expiry time.Time) (*chain.Snapshot, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) (*chain.Snapshot, error) {
		return p.GetOptionChain(ctx, instrument, expiry)
	})
}

// GetHistoricalCandles wraps the underlying provider call with the
// circuit breaker.
func (c *CircuitBreakerProvider) GetHistoricalCandles(ctx context.Context, instrument, interval string, from, to time.Time) ([]chain.Candle, error) {
	return execCircuitBreaker(c.breaker, c.provider, func(p Provider) ([]chain.Candle, error) {
		return p.GetHistoricalCandles(ctx, instrument, interval, from, to)
	})
}
