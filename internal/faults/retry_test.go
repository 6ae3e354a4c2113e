package faults

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fakeExecutor() (*Executor, *[]time.Duration) {
	var slept []time.Duration
	e := &Executor{
		sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return ctx.Err()
		},
		rand: func() float64 { return 0 },
	}
	return e, &slept
}

func TestDoExhaustsAndReturnsOriginalFault(t *testing.T) {
	e, slept := fakeExecutor()
	boom := errors.New("boom")
	calls := 0

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	}, Policy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: time.Minute, ExponentialBase: 2})

	if calls != 4 {
		t.Errorf("invocations = %d, want 4 (max_retries+1)", calls)
	}
	if !errors.Is(err, boom) || err.Error() != "boom" {
		t.Errorf("final error = %v, want original fault unchanged", err)
	}
	// 1s, 2s, 4s between the four attempts.
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("slept %d times, want %d", len(*slept), len(want))
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("delay[%d] = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestDoStopsOnSuccess(t *testing.T) {
	e, _ := fakeExecutor()
	calls := 0

	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, Policy{MaxRetries: 5, BaseDelay: time.Millisecond, MaxDelay: time.Second, ExponentialBase: 2})

	if err != nil {
		t.Fatalf("Do returned %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("invocations = %d, want 3", calls)
	}
}

func TestDoCancellationBetweenAttempts(t *testing.T) {
	e, _ := fakeExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := e.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("still failing")
	}, Policy{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Minute, ExponentialBase: 2})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do returned %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("invocations after cancel = %d, want 1", calls)
	}
}

func TestBackoffMonotonicUntilClamp(t *testing.T) {
	e, _ := fakeExecutor()
	policy := Policy{BaseDelay: time.Second, MaxDelay: 30 * time.Second, ExponentialBase: 2}

	prev := time.Duration(0)
	for attempt := 0; attempt < 10; attempt++ {
		d := e.Backoff(attempt, policy)
		if d < prev {
			t.Errorf("Backoff(%d) = %v < previous %v", attempt, d, prev)
		}
		if d > policy.MaxDelay {
			t.Errorf("Backoff(%d) = %v exceeds max %v", attempt, d, policy.MaxDelay)
		}
		prev = d
	}
	if prev != policy.MaxDelay {
		t.Errorf("final delay = %v, want clamped to %v", prev, policy.MaxDelay)
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	for _, r := range []float64{0, 0.5, 0.999} {
		e := &Executor{rand: func() float64 { return r }}
		policy := Policy{BaseDelay: 8 * time.Second, MaxDelay: time.Minute, ExponentialBase: 2, Jitter: true}

		d := e.Backoff(0, policy)
		lo, hi := 4*time.Second, 8*time.Second
		if d < lo || d > hi {
			t.Errorf("jittered delay %v outside [%v, %v] for r=%v", d, lo, hi, r)
		}
	}
}
