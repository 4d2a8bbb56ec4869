package pubsite

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Check("1.2.3.4") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
		l.Record("1.2.3.4")
	}
	if l.Check("1.2.3.4") {
		t.Fatal("fourth attempt should be blocked")
	}
	if !l.Check("5.6.7.8") {
		t.Fatal("other IPs must not be affected")
	}
}

func TestLoginLimiterWindowExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(1, time.Minute)
	defer l.Stop()
	l.now = func() time.Time { return now }

	l.Record("ip")
	if l.Check("ip") {
		t.Fatal("expected block inside window")
	}
	now = now.Add(61 * time.Second)
	if !l.Check("ip") {
		t.Fatal("expected allow after window")
	}
}

func TestLoginLimiterReset(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)
	defer l.Stop()

	l.Record("ip")
	l.Reset("ip")
	if !l.Check("ip") {
		t.Fatal("expected allow after reset")
	}
}

func TestLoginLimiterPrune(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(5, time.Minute)
	defer l.Stop()
	l.now = func() time.Time { return now }

	l.Record("old")
	now = now.Add(2 * time.Minute)
	l.Record("new")
	l.prune()

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.attempts["old"]; ok {
		t.Error("expired IP should be pruned")
	}
	if len(l.attempts["new"]) != 1 {
		t.Errorf("new attempts = %d, want 1", len(l.attempts["new"]))
	}
}

func TestLoginLimiterStopLeavesNoGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	l := NewLoginLimiter(1, time.Millisecond)
	l.Stop()
	l.Stop()
}
