package llm

import (
	"context"
	"errors"
	"iter"
	"log"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerSettings tunes the circuit breaker around a hosted gateway
type BreakerSettings struct {
	FailureThreshold uint32        // consecutive failures that open the breaker
	OpenTimeout      time.Duration // how long the breaker stays open before retrying
	HalfOpenRequests uint32        // trial requests allowed while half-open
}

// DefaultBreakerSettings returns settings suited to multi-minute agent runs
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		FailureThreshold: 3,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// BreakerGateway stops calling a failing provider for a while so requests fail
// fast instead of waiting out provider timeouts. Streamed and blocking runs
// share one breaker.
type BreakerGateway struct {
	inner   Gateway
	breaker *gobreaker.TwoStepCircuitBreaker[any]
}

// NewBreakerGateway wraps a gateway with a circuit breaker
func NewBreakerGateway(inner Gateway, settings BreakerSettings) *BreakerGateway {
	cbSettings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: settings.HalfOpenRequests,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚡ Gateway breaker %s: %s -> %s", name, from, to)
		},
		// Client disconnects are not provider failures
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerGateway{
		inner:   inner,
		breaker: gobreaker.NewTwoStepCircuitBreaker[any](cbSettings),
	}
}

// Name returns the wrapped provider name
func (g *BreakerGateway) Name() string {
	return g.inner.Name()
}

// Model returns the wrapped model identifier
func (g *BreakerGateway) Model() string {
	return g.inner.Model()
}

// State reports the breaker state (closed, half-open, open)
func (g *BreakerGateway) State() string {
	return g.breaker.State().String()
}

// Run executes a blocking run through the breaker
func (g *BreakerGateway) Run(ctx context.Context, prompt string, schema *OutputSchema) (*RunResult, error) {
	done, err := g.breaker.Allow()
	if err != nil {
		return nil, &RunError{Message: g.inner.Name() + " is temporarily unavailable: " + err.Error()}
	}
	result, err := g.inner.Run(ctx, prompt, schema)
	done(err)
	return result, err
}

// RunStreamed executes a streamed run through the breaker. The run counts as
// failed when the sequence yields an error, an error item or a turn failure.
// A consumer stopping early only counts as failed when the run's deadline
// expired.
func (g *BreakerGateway) RunStreamed(ctx context.Context, prompt string, schema *OutputSchema) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		done, err := g.breaker.Allow()
		if err != nil {
			yield(Event{}, &RunError{Message: g.inner.Name() + " is temporarily unavailable: " + err.Error()})
			return
		}

		var runErr error
		defer func() { done(runErr) }()

		for event, err := range g.inner.RunStreamed(ctx, prompt, schema) {
			if err != nil {
				runErr = err
			} else if event.Kind == EventTurnFailed {
				runErr = &RunError{Message: event.Error}
			} else if event.IsItemError() {
				runErr = &RunError{Message: event.Item.Message}
			}
			if !yield(event, err) {
				if runErr == nil {
					runErr = context.Canceled
					if errors.Is(ctx.Err(), context.DeadlineExceeded) {
						runErr = ctx.Err()
					}
				}
				return
			}
		}
	}
}
