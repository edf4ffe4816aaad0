package reviewpress

import (
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLoginLimiter(2, 200*time.Millisecond)
	ip := "203.0.113.10"

	if !limiter.Check(ip) {
		t.Fatal("expected fresh ip to be allowed")
	}
	limiter.Record(ip)
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatal("expected ip to be blocked after max failures")
	}
}

func TestLoginLimiterExpiresWindow(t *testing.T) {
	limiter := NewLoginLimiter(1, 100*time.Millisecond)
	ip := "203.0.113.20"

	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatal("expected ip to be blocked inside the window")
	}

	time.Sleep(150 * time.Millisecond)
	if !limiter.Check(ip) {
		t.Fatal("expected ip to be allowed after the window elapsed")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter := NewLoginLimiter(1, 200*time.Millisecond)

	limiter.Record("203.0.113.30")
	if limiter.Check("203.0.113.30") {
		t.Fatal("expected first ip to be blocked")
	}
	if !limiter.Check("203.0.113.31") {
		t.Fatal("expected second ip to be allowed independently")
	}
}

func TestLoginLimiterReset(t *testing.T) {
	limiter := NewLoginLimiter(1, 200*time.Millisecond)
	ip := "203.0.113.40"

	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatal("expected ip to be blocked")
	}
	limiter.Reset(ip)
	if !limiter.Check(ip) {
		t.Fatal("expected ip to be allowed after reset")
	}
}
