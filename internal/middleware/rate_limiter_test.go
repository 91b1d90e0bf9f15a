package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.AllowUser(42) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.AllowUser(42) {
		t.Error("fourth request should be blocked")
	}
	if got := rl.Remaining("42"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.AllowUser(1) {
		t.Fatal("first user should be allowed")
	}
	if !rl.AllowUser(2) {
		t.Error("second user should have their own bucket")
	}
	if rl.AllowUser(1) {
		t.Error("first user should be over their limit")
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	if !rl.Allow("ip:1") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("ip:1") {
		t.Fatal("second request should be blocked")
	}

	time.Sleep(30 * time.Millisecond)

	if !rl.Allow("ip:1") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Allow("a")
	if rl.Allow("a") {
		t.Fatal("should be over limit")
	}

	rl.Reset()

	if !rl.Allow("a") {
		t.Error("Reset should clear the bucket")
	}
}
