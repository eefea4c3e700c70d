package worker

import (
	"context"
	"testing"
	"time"
)

// ready reports whether key gets a token without waiting
func ready(l *Limiter, key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, key) == nil
}

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(100*time.Millisecond, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(100*time.Millisecond, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(10*time.Millisecond, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "defs/country.yaml"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different file should also work
	if err := limiter.Wait(ctx, "defs/styles.yaml"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(time.Hour, 1)
	path := "defs/country.yaml"

	// First event ok
	if !ready(limiter, path) {
		t.Errorf("expected first event to pass")
	}

	// Burst 1 is consumed; the next token is beyond the deadline
	if ready(limiter, path) {
		t.Errorf("expected wait to fail (exhausted tokens)")
	}

	// Other files have their own bucket
	if !ready(limiter, "defs/other.yaml") {
		t.Errorf("expected other file to pass")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !ready(limiter, "a.yaml") {
			t.Fatalf("expected unlimited events, failed at %d", i)
		}
	}
}

func TestLimiter_Forget(t *testing.T) {
	limiter := NewLimiter(time.Hour, 1)
	ready(limiter, "a.yaml")
	limiter.Forget("a.yaml")

	if !ready(limiter, "a.yaml") {
		t.Error("expected a fresh bucket after Forget")
	}
}
