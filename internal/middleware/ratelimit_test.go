package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(rate int, whitelist []string) (*RateLimiter, *time.Time) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(rate, time.Minute, whitelist, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllow_WindowBudget(t *testing.T) {
	rl, now := newTestLimiter(2, nil)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "budgets are per ip")

	*now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "budget refills after the window")
}

func TestEvictIdle(t *testing.T) {
	rl, now := newTestLimiter(5, nil)
	rl.Allow("10.0.0.1")

	*now = now.Add(90 * time.Second)
	rl.Allow("10.0.0.2")
	assert.Equal(t, 0, rl.evictIdle())

	*now = now.Add(45 * time.Second)
	assert.Equal(t, 1, rl.evictIdle())
	assert.Equal(t, 1, rl.Stats().TrackedIPs)
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(1, []string{"192.168.1.1"})
	blocked := 0
	rl.OnBlocked(func() { blocked++ })

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(remote, xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/routes", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1234", "").Code)
	rec := do("10.0.0.1:1234", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, blocked)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, do("10.0.0.9:1", "192.168.1.1").Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"remote addr", "10.0.0.1:5555", "", "", "10.0.0.1"},
		{"forwarded chain", "10.0.0.1:5555", "203.0.113.7, 10.0.0.2", "", "203.0.113.7"},
		{"forwarded with port", "10.0.0.1:5555", "203.0.113.7:8080", "", "203.0.113.7"},
		{"real ip", "10.0.0.1:5555", "", "198.51.100.4", "198.51.100.4"},
		{"bare remote", "10.0.0.1", "", "", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
