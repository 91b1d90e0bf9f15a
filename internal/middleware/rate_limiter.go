package middleware

import (
	"strconv"
	"sync"
	"time"
)

// RateLimiter applies a fixed-window request cap per caller. Telegram
// updates are keyed by user ID, websocket upgrades by remote address.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	maxRequests int
	window      time.Duration
}

type bucket struct {
	requests int
	resetAt  time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:     make(map[string]*bucket),
		maxRequests: maxRequests,
		window:      window,
	}

	go rl.cleanup()

	return rl
}

// Allow records a request for key and reports whether it fits in the
// current window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	b, exists := rl.buckets[key]
	if !exists || now.After(b.resetAt) {
		rl.buckets[key] = &bucket{
			requests: 1,
			resetAt:  now.Add(rl.window),
		}
		return true
	}

	if b.requests >= rl.maxRequests {
		return false
	}

	b.requests++
	return true
}

// AllowUser is Allow keyed by a Telegram user ID.
func (rl *RateLimiter) AllowUser(userID int64) bool {
	return rl.Allow(strconv.FormatInt(userID, 10))
}

// Remaining returns how many requests key has left in its window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists || time.Now().After(b.resetAt) {
		return rl.maxRequests
	}

	remaining := rl.maxRequests - b.requests
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup removes expired buckets
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.After(b.resetAt) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Reset clears all buckets (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.buckets = make(map[string]*bucket)
}
