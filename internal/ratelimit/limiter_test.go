package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestThrottleWaitBurst(t *testing.T) {
	th := NewThrottle(60, 2)

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		err := th.Wait(ctx)
		cancel()
		if err != nil {
			t.Fatalf("expected action %d within burst, got %v", i+1, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := th.Wait(ctx); err == nil {
		t.Fatalf("expected third action to be limited")
	}
}

func TestThrottleDisabled(t *testing.T) {
	th := NewThrottle(0, 0)
	for i := 0; i < 100; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("disabled throttle should never limit: %v", err)
		}
	}

	var nilThrottle *Throttle
	if err := nilThrottle.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected wait error: %v", err)
	}
}

func TestThrottleWaitCanceled(t *testing.T) {
	th := NewThrottle(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := th.Wait(ctx); err == nil {
		t.Fatalf("expected canceled wait to fail")
	}

	limited := NewThrottle(1, 1)
	if err := limited.Wait(context.Background()); err != nil {
		t.Fatalf("expected first action allowed: %v", err)
	}
	if err := limited.Wait(ctx); err == nil {
		t.Fatalf("expected canceled wait to fail")
	}
}
