package worker

import (
	"context"
	"testing"
	"time"
)

func TestNewLimiter_BurstDefault(t *testing.T) {
	if l := NewLimiter(10, 5); l.burst != 5 {
		t.Errorf("burst = %d, want 5", l.burst)
	}
	if l := NewLimiter(10, -1); l.burst != 5 {
		t.Errorf("burst = %d for negative input, want default 5", l.burst)
	}
}

func TestLimiter_WaitWithinBurst(t *testing.T) {
	limiter := NewLimiter(1, 2)
	ctx := context.Background()

	// Two requests fit the burst and must not block.
	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := limiter.Wait(ctx, "https://ipfs.io/ipfs/QmAbc123"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("burst requests took %v, expected no throttling", elapsed)
	}
}

func TestLimiter_HostsAreIndependent(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	ctx := context.Background()

	// Drain the preferred gateway's budget.
	if err := limiter.Wait(ctx, "https://ipfs.io/ipfs/QmAbc123"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	// A fallback gateway has its own budget and is not throttled.
	start := time.Now()
	if err := limiter.Wait(ctx, "https://dweb.link/ipfs/QmAbc123"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("fallback host waited %v, expected its own budget", elapsed)
	}
}

func TestLimiter_WaitHonorsCancellation(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	ctx, cancel := context.WithCancel(context.Background())

	if err := limiter.Wait(ctx, "https://ipfs.io/ipfs/QmAbc123"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- limiter.Wait(ctx, "https://ipfs.io/ipfs/QmAbc123")
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Wait returned nil after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(10, 1)
	if err := limiter.Wait(context.Background(), "://missing-scheme"); err == nil {
		t.Error("expected error for unparseable URL")
	}
}
