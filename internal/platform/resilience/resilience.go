// Package resilience guards collaborator calls with retry and circuit breaking.
package resilience

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/sony/gobreaker"
)

// Config holds retry parameters
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// RetryWithBackoff executes fn up to MaxRetries+1 times with exponential backoff and jitter.
// It stops early when ctx is done.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < cfg.MaxRetries {
			wait := time.Duration(math.Pow(2, float64(attempt))) * cfg.InitialBackoff
			if half := int64(wait / 2); half > 0 {
				wait += time.Duration(rand.Int63n(half))
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return lastErr
}

// NewCircuitBreaker creates a breaker that opens after 5+ requests with a 60% failure ratio.
// Errors accepted by isPermanent count as successes.
func NewCircuitBreaker(name string, logger *slog.Logger, isPermanent func(error) bool) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || (isPermanent != nil && isPermanent(err))
		},
	})
}

// Guard wraps calls to one collaborator
type Guard struct {
	name        string
	cfg         Config
	breaker     *gobreaker.CircuitBreaker
	isPermanent func(error) bool
}

// NewGuard creates a guard for the named collaborator. isPermanent reports errors that
// retrying cannot fix (not found, validation); those are returned unchanged.
func NewGuard(name string, cfg Config, logger *slog.Logger, isPermanent func(error) bool) *Guard {
	if isPermanent == nil {
		isPermanent = func(error) bool { return false }
	}
	return &Guard{
		name:        name,
		cfg:         cfg,
		breaker:     NewCircuitBreaker(name, logger, isPermanent),
		isPermanent: isPermanent,
	}
}

// Do runs fn through the breaker with retries. Transient failures that survive the retries
// are reported as shared.CollaboratorUnavailableError.
func (g *Guard) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var permanent error
	err := RetryWithBackoff(ctx, g.cfg, func() error {
		_, err := g.breaker.Execute(func() (interface{}, error) {
			return nil, fn(ctx)
		})
		if err != nil && g.isPermanent(err) {
			permanent = err
			return nil
		}
		return err
	})

	if permanent != nil {
		return permanent
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
		return err
	}
	return shared.CollaboratorUnavailableError{Collaborator: g.name, Operation: operation, Err: err}
}

// State exposes the breaker state for health reporting
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}
