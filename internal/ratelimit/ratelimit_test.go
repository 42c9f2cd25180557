package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(limit, window)
	l.now = clock.now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "request %d", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"), "keys are independent")

	clock.advance(time.Minute)
	assert.True(t, l.Allow("1.2.3.4"), "window resets")
}

func TestLimiter_DisabledWhenLimitNotPositive(t *testing.T) {
	l, _ := newTestLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("1.2.3.4"))
	}

	var nilLimiter *Limiter
	assert.True(t, nilLimiter.Allow("1.2.3.4"))
}

func TestLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)

	for i := 0; i < 50; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Len(t, l.requests, 50)

	clock.advance(2 * time.Minute)
	l.Cleanup()
	assert.Empty(t, l.requests)
}

func TestLimiter_DeterministicCleanup(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)

	for i := 0; i < 20; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	clock.advance(2 * time.Minute)

	// The 100th request triggers a sweep of the expired keys.
	for i := 0; i < 80; i++ {
		l.Allow("192.168.1.1")
	}
	assert.Len(t, l.requests, 1)
}

func TestLimiter_Middleware(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	var limited int
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), func(*http.Request) { limited++ })

	req := httptest.NewRequest(http.MethodPost, "/billing/portal-session", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
	assert.Equal(t, 1, limited)

	other := httptest.NewRequest(http.MethodPost, "/billing/portal-session", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimiter_MiddlewareIgnoresForwardingHeaders(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), nil)

	allowed := 0
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/billing/portal-session", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}
