package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Limiter{Client: client, Prefix: "rl:"}, mr
}

func TestLimiterSlidingWindow(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "1.2.3.4", window, max)
		require.NoError(t, err)
		require.True(t, allowed)
		require.Equal(t, max-(i+1), remaining)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "1.2.3.4", window, max)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)

	mr.FastForward(window)

	allowed, _, _, err = limiter.Allow(ctx, "1.2.3.4", window, max)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestLimiterDisabledWithoutClient(t *testing.T) {
	allowed, _, _, err := Limiter{}.Allow(context.Background(), "key", time.Second, 5)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	handler := Handler{
		Limiter: limiter,
		Config: Config{
			Key:    func(*http.Request) string { return "fixed" },
			Window: time.Minute,
			Max:    1,
		},
	}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.NotEmpty(t, second.Header().Get("Retry-After"))
}
