package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_Burst(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// separate bucket per IP
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestIPRateLimiter_EvictsIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("10.0.0.2")

	assert.Len(t, l.visitors, 1)
}

func TestIPRateLimiter_SweepsOncePerTTL(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	l := NewIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = start.Add(9 * time.Minute)
	l.Allow("10.0.0.2")
	now = start.Add(11 * time.Minute)
	l.Allow("10.0.0.3")
	assert.Len(t, l.visitors, 2, "10.0.0.1 swept once idle past the TTL")

	// 10.0.0.2 is now idle past the TTL but the last sweep is too recent
	now = start.Add(20 * time.Minute)
	l.Allow("10.0.0.3")
	assert.Len(t, l.visitors, 2)

	now = start.Add(22 * time.Minute)
	l.Allow("10.0.0.3")
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.0.3")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/token", RateLimit(NewIPRateLimiter(0.001, 1)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/auth/token", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/auth/token", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
