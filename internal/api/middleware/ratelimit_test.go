package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gatherhub/server/internal/config"
	"github.com/stretchr/testify/assert"
)

func serve(handler http.Handler, path, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitPublicTier(t *testing.T) {
	limiter := RateLimit(config.RateLimitConfig{PublicPerMinute: 3, LoginPerMinute: 1})
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(handler, "/events", "10.0.0.1:1234"))
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, "/events", "10.0.0.1:1234"))

	// a different client has its own bucket
	assert.Equal(t, http.StatusOK, serve(handler, "/events", "10.0.0.2:1234"))
}

func TestRateLimitLoginTierIsStricter(t *testing.T) {
	limiter := RateLimit(config.RateLimitConfig{PublicPerMinute: 100, LoginPerMinute: 2})
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	login := WithRateLimitTierHandler(TierLogin)(handler)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(login, "/login", "10.0.0.1:1234"))
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(login, "/login", "10.0.0.1:1234"))

	// the public tier for the same client is unaffected
	assert.Equal(t, http.StatusOK, serve(handler, "/events", "10.0.0.1:1234"))
}

func TestRateLimitExemptsHealthEndpoints(t *testing.T) {
	limiter := RateLimit(config.RateLimitConfig{PublicPerMinute: 1})
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(handler, "/healthz", "10.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, serve(handler, "/readyz", "10.0.0.1:1234"))
	}
}

func TestLimiterStoreCleanupEvictsStaleEntries(t *testing.T) {
	store := newLimiterStore(config.RateLimitConfig{PublicPerMinute: 10})

	store.limiter(TierPublic, "10.0.0.1")
	store.limiter(TierPublic, "10.0.0.2")

	store.mu.Lock()
	store.limiters["public:10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	store.cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.limiters, "public:10.0.0.1")
	assert.Contains(t, store.limiters, "public:10.0.0.2")
}

func TestRateLimitDisabledWhenZero(t *testing.T) {
	limiter := RateLimit(config.RateLimitConfig{})
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, serve(handler, "/events", "10.0.0.1:1234"))
	}
}
