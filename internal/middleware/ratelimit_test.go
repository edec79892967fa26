package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitFixedWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(NewMemoryRateStore(), 2, 100*time.Millisecond))
	r.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })

	// First two requests should pass
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Third request within window should be rate-limited
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	time.Sleep(120 * time.Millisecond)

	// After window resets, should pass again
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitRejectsBeforeHandlerRuns(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handlerCalls := 0
	r := gin.New()
	r.Use(RateLimit(NewMemoryRateStore(), 1, time.Minute))
	r.POST("/contact", func(c *gin.Context) {
		handlerCalls++
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/contact", nil)
		r.ServeHTTP(w, req)
	}

	assert.Equal(t, 1, handlerCalls, "excess requests must not reach the handler")
}

func TestMemoryRateStoreSweepDropsExpiredBuckets(t *testing.T) {
	store := NewMemoryRateStore()
	defer store.Stop()

	_, _, err := store.Increment(context.Background(), "a", 10*time.Millisecond)
	require.NoError(t, err)
	_, _, err = store.Increment(context.Background(), "b", time.Minute)
	require.NoError(t, err)

	store.sweep(time.Now().Add(time.Second))

	store.mu.Lock()
	_, expiredKept := store.data["a"]
	_, liveKept := store.data["b"]
	store.mu.Unlock()

	assert.False(t, expiredKept, "expired bucket should be swept")
	assert.True(t, liveKept, "live bucket must survive the sweep")
}

func TestMemoryRateStoreStopIsIdempotent(t *testing.T) {
	store := NewMemoryRateStore()
	store.Stop()
	store.Stop()

	// The store keeps counting after the janitor halts.
	count, _, err := store.Increment(context.Background(), "a", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, context.DeadlineExceeded
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(failingStore{}, 1, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitDisabledWithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(nil, 1, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
