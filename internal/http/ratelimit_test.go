package http

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()

	if !rl.allow("1.2.3.4") || !rl.allow("1.2.3.4") {
		t.Fatal("requests within the limit were rejected")
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("request over the limit was allowed")
	}
	// Other clients have their own counters.
	if !rl.allow("5.6.7.8") {
		t.Fatal("unrelated client was limited")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := newRateLimiter(1, 20*time.Millisecond)
	defer rl.stop()

	if !rl.allow("1.2.3.4") {
		t.Fatal("first request rejected")
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("second request in the window was allowed")
	}
	time.Sleep(30 * time.Millisecond)
	if !rl.allow("1.2.3.4") {
		t.Fatal("counter did not reset after the window passed")
	}
}

func TestRateLimiterSweepsStaleEntries(t *testing.T) {
	rl := newRateLimiter(1, time.Millisecond)
	defer rl.stop()

	rl.allow("1.2.3.4")
	// The sweep runs every five windows and drops entries idle for more
	// than ten.
	time.Sleep(50 * time.Millisecond)

	rl.mu.Lock()
	n := len(rl.clients)
	rl.mu.Unlock()
	if n != 0 {
		t.Fatalf("stale entries remaining: %d", n)
	}
}
