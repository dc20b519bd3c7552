package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestSleep_NonPositiveReturnsImmediately(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Sleep(context.Background(), -time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Errorf("zero sleep should not block")
	}
}

func TestSleep_Waits(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := time.Since(start); d < 45*time.Millisecond {
		t.Errorf("expected to sleep about 50ms, took %v", d)
	}
}

func TestSleep_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Sleep(ctx, 5*time.Second)
	if err == nil {
		t.Fatalf("expected context canceled error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("sleep did not return promptly after cancel")
	}
}

func TestSleep_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wall.Sleep(ctx, 0); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()

	_ = r.Sleep(ctx, time.Second)
	_ = r.Sleep(ctx, 7*time.Second)
	_ = r.Sleep(ctx, 7*time.Second)

	if got := r.Total(); got != 15*time.Second {
		t.Errorf("expected 15s total, got %v", got)
	}
	if got := r.Count(7 * time.Second); got != 2 {
		t.Errorf("expected two 7s pauses, got %d", got)
	}
	if got := r.Pauses(); len(got) != 3 || got[0] != time.Second {
		t.Errorf("unexpected pauses %v", got)
	}
}
