package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Sleeper pauses the caller for a fixed duration. Implementations must return
// early with the context error when ctx is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// Wall is a Sleeper backed by the wall clock.
var Wall Sleeper = SleeperFunc(Sleep)

// Sleep blocks for d or until ctx is done. Non-positive durations return
// immediately unless the context is already cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recorder is a Sleeper that records requested pauses without blocking.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.pauses = append(r.pauses, d)
	r.mu.Unlock()
	return nil
}

// Pauses returns a copy of every recorded pause in call order.
func (r *Recorder) Pauses() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.pauses))
	copy(out, r.pauses)
	return out
}

// Total returns the sum of all recorded pauses.
func (r *Recorder) Total() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total time.Duration
	for _, d := range r.pauses {
		total += d
	}
	return total
}

// Count returns how many pauses of exactly d were recorded.
func (r *Recorder) Count(d time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.pauses {
		if p == d {
			n++
		}
	}
	return n
}
