package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Second)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("192.168.1.1"), "request %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow("192.168.1.1"), "4th request should be blocked")
	assert.True(t, limiter.Allow("192.168.1.2"), "different IP should be allowed")
}

func TestRateLimiter_WindowExpiration(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	limiter.now = func() time.Time { return now }

	limiter.Allow("192.168.1.1")
	limiter.Allow("192.168.1.1")
	assert.False(t, limiter.Allow("192.168.1.1"))

	now = now.Add(61 * time.Second)
	assert.True(t, limiter.Allow("192.168.1.1"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(5, time.Minute)
	defer limiter.Stop()
	limiter.now = func() time.Time { return now }

	limiter.Allow("192.168.1.1")
	limiter.Allow("192.168.1.2")
	limiter.Allow("192.168.1.3")

	limiter.mu.Lock()
	assert.Len(t, limiter.requests, 3)
	limiter.mu.Unlock()

	now = now.Add(2 * time.Minute)
	limiter.cleanup()

	limiter.mu.Lock()
	assert.Empty(t, limiter.requests)
	limiter.mu.Unlock()
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(10, time.Second)
	defer limiter.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				limiter.Allow("192.168.1.1")
			}
		}()
	}
	wg.Wait()

	assert.False(t, limiter.Allow("192.168.1.1"), "should have exceeded limit with concurrent requests")
}

func TestRateLimitMiddleware_KeysByHost(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()

	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	first.RemoteAddr = "10.0.0.1:50000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// a new connection from the same host shares the budget
	second := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	second.RemoteAddr = "10.0.0.1:50001"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
