package handlers

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBlocksAfterMaxAttempts(t *testing.T) {
	rl := newRateLimiter()
	ip := "192.0.2.1"

	for i := 0; i < maxAttempts; i++ {
		if !rl.Allow(ip) {
			t.Fatalf("Blocked too early, at attempt %d", i)
		}
		rl.RecordFailure(ip)
	}

	if rl.Allow(ip) {
		t.Error("Expected IP to be blocked after max attempts")
	}

	// Other IPs are unaffected
	if !rl.Allow("192.0.2.2") {
		t.Error("An unrelated IP was blocked")
	}
}

func TestRateLimiterResetUnblocks(t *testing.T) {
	rl := newRateLimiter()
	ip := "192.0.2.1"

	for i := 0; i < maxAttempts; i++ {
		rl.RecordFailure(ip)
	}
	if rl.Allow(ip) {
		t.Fatal("Expected IP to be blocked")
	}

	rl.Reset(ip)
	if !rl.Allow(ip) {
		t.Error("Expected Reset to unblock the IP")
	}
}

func TestRateLimiterBlockExpires(t *testing.T) {
	rl := newRateLimiter()
	ip := "192.0.2.1"

	for i := 0; i < maxAttempts; i++ {
		rl.RecordFailure(ip)
	}

	// Simulate the block aging out
	rl.Lock()
	rl.blocked[ip] = time.Now().Add(-time.Minute)
	rl.Unlock()

	if !rl.Allow(ip) {
		t.Error("Expected an expired block to clear")
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.7:54321"
	if ip := getClientIP(r); ip != "192.0.2.7" {
		t.Errorf("Expected 192.0.2.7, got %s", ip)
	}

	r.RemoteAddr = "192.0.2.8"
	if ip := getClientIP(r); ip != "192.0.2.8" {
		t.Errorf("Expected 192.0.2.8, got %s", ip)
	}
}
