package server

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// rateLimiter is a fixed-window in-memory limiter keyed by API key (falling
// back to remote address). Single-process only; a multi-instance deployment
// needs a shared backend in front of this service.
type rateLimiter struct {
	window time.Duration
	max    int

	mu      sync.Mutex
	entries map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	count      int
	windowFrom time.Time
}

func newRateLimiter(window time.Duration, max int) *rateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 60
	}
	rl := &rateLimiter{
		window:  window,
		max:     max,
		entries: make(map[string]*rateLimitEntry),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if key == "" {
			key = r.RemoteAddr
		}

		allowed, remaining, reset := rl.take(key)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.max))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			respondError(w, http.StatusTooManyRequests, "too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *rateLimiter) take(key string) (allowed bool, remaining int, reset time.Time) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[key]
	if !ok || now.Sub(entry.windowFrom) > rl.window {
		entry = &rateLimitEntry{windowFrom: now}
		rl.entries[key] = entry
	}

	reset = entry.windowFrom.Add(rl.window)
	if entry.count >= rl.max {
		return false, 0, reset
	}
	entry.count++
	return true, rl.max - entry.count, reset
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-rl.window)
		rl.mu.Lock()
		for key, entry := range rl.entries {
			if entry.windowFrom.Before(cutoff) {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}
