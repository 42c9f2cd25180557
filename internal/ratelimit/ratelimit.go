// Package ratelimit provides a per-key fixed-window limiter for routes that
// mint provider-side resources, such as billing portal sessions.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/mihaimyh/billingview/internal/httputil"
)

// Limiter provides simple in-memory rate limiting keyed by client IP
type Limiter struct {
	mu            sync.Mutex
	requests      map[string]*bucket
	limit         int           // max requests per window
	window        time.Duration // time window
	requestCount  int           // counter for deterministic cleanup
	cleanupEvery  int           // cleanup every N requests
	cleanupAtSize int           // cleanup when map size exceeds this
	now           func() time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// New creates a limiter allowing limit requests per window per key.
// A non-positive limit disables limiting.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		requests:      make(map[string]*bucket),
		limit:         limit,
		window:        window,
		cleanupEvery:  100,
		cleanupAtSize: 1000,
		now:           time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	l.requestCount++
	if l.requestCount%l.cleanupEvery == 0 || len(l.requests) > l.cleanupAtSize {
		l.cleanupExpired(now)
		if l.requestCount >= l.cleanupEvery*10 {
			l.requestCount = 0
		}
	}

	b, exists := l.requests[key]
	if !exists || !now.Before(b.resetAt) {
		l.requests[key] = &bucket{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

func (l *Limiter) cleanupExpired(now time.Time) {
	for key, b := range l.requests {
		if !now.Before(b.resetAt) {
			delete(l.requests, key)
		}
	}
}

// Cleanup removes all expired entries.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanupExpired(l.now())
}

// Middleware wraps an HTTP handler with rate limiting by client IP.
// onLimited, if non-nil, is called for every rejected request.
func (l *Limiter) Middleware(next http.Handler, onLimited func(r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(httputil.ClientIP(r)) {
			if onLimited != nil {
				onLimited(r)
			}
			_ = httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
