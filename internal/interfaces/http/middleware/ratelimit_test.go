package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fixedClock lets tests move time without sleeping
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedLimiter(rps float64, burst int) (*RateLimiter, *fixedClock) {
	clock := &fixedClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(rps, burst, time.Minute)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows the burst then blocks", func(t *testing.T) {
		rl, _ := newClockedLimiter(1, 3)
		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("a"), "request %d", i+1)
		}
		assert.False(t, rl.Allow("a"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl, _ := newClockedLimiter(1, 1)
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
	})

	t.Run("refills over time", func(t *testing.T) {
		rl, clock := newClockedLimiter(2, 1)
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))

		clock.advance(500 * time.Millisecond)
		assert.True(t, rl.Allow("a"))
	})

	t.Run("burst below one is raised to one", func(t *testing.T) {
		rl, _ := newClockedLimiter(1, 0)
		assert.True(t, rl.Allow("a"))
	})

	t.Run("sweep drops idle buckets", func(t *testing.T) {
		rl, clock := newClockedLimiter(1, 1)
		rl.Allow("old")
		clock.advance(2 * time.Minute)
		rl.Allow("fresh")

		assert.Equal(t, 1, rl.Sweep())
		rl.mu.Lock()
		_, ok := rl.clients["fresh"]
		rl.mu.Unlock()
		assert.True(t, ok)
	})
}

func TestRateLimit_Middleware(t *testing.T) {
	rl, _ := newClockedLimiter(1, 2)

	router := gin.New()
	router.Use(RequestID(), RateLimit(rl, ClientKey))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	rec := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, ErrCodeRateLimited, errorCode(t, rec))

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestClientKey(t *testing.T) {
	svc := newTestJWTService(time.Minute)
	token, userID := mintToken(t, svc)

	router := gin.New()
	var key string
	router.Use(OptionalAuth(svc))
	router.GET("/test", func(c *gin.Context) {
		key = ClientKey(c)
		c.Status(http.StatusOK)
	})

	serve(router, token)
	assert.Equal(t, "user:"+userID.String(), key)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "ip:192.0.2.7", key)
}
