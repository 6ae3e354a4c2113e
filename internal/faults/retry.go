package faults

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// Policy defines retry behavior for a fallible operation.
type Policy struct {
	MaxRetries      int           `yaml:"max_retries"`
	BaseDelay       time.Duration `yaml:"base_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	ExponentialBase float64       `yaml:"exponential_base"`
	Jitter          bool          `yaml:"jitter"`
}

// DefaultPolicy provides sensible defaults.
var DefaultPolicy = Policy{
	MaxRetries:      3,
	BaseDelay:       1 * time.Second,
	MaxDelay:        60 * time.Second,
	ExponentialBase: 2.0,
	Jitter:          true,
}

// Operation is a fallible unit of work.
type Operation func(ctx context.Context) error

// Executor retries operations with exponential backoff. The sleep function
// is swappable so tests never block.
type Executor struct {
	sleep func(ctx context.Context, d time.Duration) error
	rand  func() float64
}

// NewExecutor creates an executor with real sleeping and jitter.
func NewExecutor() *Executor {
	return &Executor{
		sleep: sleepCtx,
		rand:  rand.Float64,
	}
}

// Do invokes op up to policy.MaxRetries+1 times. Attempt numbering starts at
// zero. The final fault is returned unchanged: no wrapping that would lose
// the original type or message. Cancellation is checked between attempts so
// a cancelled caller never pays another backoff delay.
func (e *Executor) Do(ctx context.Context, op Operation, policy Policy) error {
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == policy.MaxRetries {
			break
		}

		delay := e.Backoff(attempt, policy)
		slog.Warn("Attempt failed, backing off",
			"attempt", attempt,
			"delay", delay,
			"error", lastErr)

		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// Backoff computes the delay after the given attempt:
// min(base * expBase^attempt, max), scaled by a uniform factor in [0.5, 1.0)
// when jitter is enabled.
func (e *Executor) Backoff(attempt int, policy Policy) time.Duration {
	delay := float64(policy.BaseDelay) * math.Pow(policy.ExponentialBase, float64(attempt))
	if delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}
	if policy.Jitter {
		delay *= 0.5 + e.rand()*0.5
	}
	return time.Duration(delay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
