package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Requests within the window limit pass, everything beyond it gets 429.
// Each terminal (remote address) has its own counter.
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("excessive requests are blocked with 429", prop.ForAll(
		func(limit int, excess int) bool {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("failed to start miniredis: %v", err)
			}
			defer mr.Close()

			redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer redisClient.Close()

			handler := RateLimitMiddleware(redisClient, RateLimitConfig{
				RequestsPerWindow: limit,
				Window:            time.Minute,
				KeyPrefix:         "test_rate_limit",
			}, zap.NewNop())(okHandler())

			for i := 0; i < limit; i++ {
				w := httptest.NewRecorder()
				r := httptest.NewRequest(http.MethodGet, "/api/catalog/products", nil)
				r.RemoteAddr = "10.0.0.1:5000"
				handler.ServeHTTP(w, r)
				if w.Code != http.StatusOK {
					t.Logf("request %d within limit got %d", i+1, w.Code)
					return false
				}
			}

			for i := 0; i < excess; i++ {
				w := httptest.NewRecorder()
				r := httptest.NewRequest(http.MethodGet, "/api/catalog/products", nil)
				r.RemoteAddr = "10.0.0.1:5000"
				handler.ServeHTTP(w, r)
				if w.Code != http.StatusTooManyRequests {
					t.Logf("request beyond limit got %d", w.Code)
					return false
				}
				if w.Header().Get("Retry-After") == "" {
					t.Log("429 response missing Retry-After header")
					return false
				}
			}

			// A different terminal is unaffected.
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/catalog/products", nil)
			r.RemoteAddr = "10.0.0.2:5000"
			handler.ServeHTTP(w, r)
			return w.Code == http.StatusOK
		},
		gen.IntRange(1, 25),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_SetsRemainingHeader(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	handler := RateLimitMiddleware(redisClient, RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "test_rate_limit",
	}, zap.NewNop())(okHandler())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.RemoteAddr = "10.0.0.3:5000"
	handler.ServeHTTP(w, r)

	if got := w.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("expected X-RateLimit-Limit 10, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "9" {
		t.Errorf("expected X-RateLimit-Remaining 9, got %q", got)
	}
}

// A broken Redis must never take the register down with it.
func TestRateLimit_FailsOpenWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	handler := RateLimitMiddleware(redisClient, RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		KeyPrefix:         "test_rate_limit",
	}, zap.NewNop())(okHandler())

	mr.Close()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/catalog/products", nil)
	r.RemoteAddr = "10.0.0.4:5000"
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("expected fail-open 200 when redis is down, got %d", w.Code)
	}
}
