package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the model circuit breaker
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns a default configuration for the circuit breaker
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  5,
		Interval:     30 * time.Second,
		Timeout:      60 * time.Second,
		FailureRatio: 0.8,
		MinRequests:  5,
	}
}

// BreakerProvider guards a provider with a circuit breaker. Rejections while
// the breaker is open surface as ordinary completion errors.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next with a circuit breaker
func NewBreakerProvider(next Provider, config BreakerConfig, logger *zap.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerProvider{next: next, cb: cb}
}

// IsAvailable is false while the breaker is open
func (b *BreakerProvider) IsAvailable() bool {
	return b.cb.State() != gobreaker.StateOpen && b.next.IsAvailable()
}

// State returns the breaker state
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

// Complete runs the wrapped completion through the breaker
func (b *BreakerProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, prompt, options)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
