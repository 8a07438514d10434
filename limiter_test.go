package lizechat

import (
	"testing"
	"time"
)

// attempt mirrors the login handler: check, then record the failure.
func attempt(l *LoginLimiter, ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLoginLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	if !attempt(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !attempt(limiter, ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if attempt(limiter, ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewLoginLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	if !attempt(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if attempt(limiter, ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !attempt(limiter, ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	defer limiter.Stop()
	ip := "203.0.113.40"

	for i := 0; i < 3; i++ {
		if !limiter.Check(ip) {
			t.Fatalf("Check %d blocked without any recorded failure", i)
		}
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected Check to block after a recorded failure")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter := NewLoginLimiter(1, 200*time.Millisecond)
	defer limiter.Stop()

	if !attempt(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !attempt(limiter, "203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if attempt(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}
