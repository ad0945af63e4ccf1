package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eventuraa/server/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func limitedRequest(t *testing.T, handler http.Handler, remoteAddr string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	req.RemoteAddr = remoteAddr
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res.Code
}

func TestLoginRateLimitAllowsBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{LoginPer15Minutes: 5})
	defer rl.Stop()
	handler := rl.Limit(TierLogin)(okHandler())

	for i := 0; i < 5; i++ {
		if code := limitedRequest(t, handler, "192.168.1.100:12345"); code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	req.RemoteAddr = "192.168.1.100:12345"
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", res.Code)
	}
	if res.Header().Get("Retry-After") != "180" {
		t.Fatalf("Retry-After = %q, want 180", res.Header().Get("Retry-After"))
	}
}

func TestRateLimitKeysByClientAddress(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{LoginPer15Minutes: 1})
	defer rl.Stop()
	handler := rl.Limit(TierLogin)(okHandler())

	if code := limitedRequest(t, handler, "10.0.0.1:1000"); code != http.StatusOK {
		t.Fatalf("first client: status %d, want 200", code)
	}
	if code := limitedRequest(t, handler, "10.0.0.1:1001"); code != http.StatusTooManyRequests {
		t.Fatalf("first client again: status %d, want 429", code)
	}
	// A different address gets its own bucket.
	if code := limitedRequest(t, handler, "10.0.0.2:1000"); code != http.StatusOK {
		t.Fatalf("second client: status %d, want 200", code)
	}
}

func TestRateLimitDisabledWhenZero(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{})
	handler := rl.Limit(TierPublic)(okHandler())

	for i := 0; i < 20; i++ {
		if code := limitedRequest(t, handler, "10.0.0.3:1000"); code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, code)
		}
	}
}

func TestRateLimitSkipsHealthEndpoints(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{PublicPerMinute: 1})
	defer rl.Stop()
	handler := rl.Limit(TierPublic)(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.4:1000"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("healthz request %d: status %d, want 200", i+1, res.Code)
		}
	}
}

func TestClientKeyIgnoresForwardingFromUntrustedPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.RemoteAddr = "203.0.113.5:40000"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	if key := clientKey(req, nil); key != "203.0.113.5" {
		t.Fatalf("key = %q, want direct address", key)
	}

	// The header counts once the peer is a configured proxy.
	if key := clientKey(req, []string{"203.0.113.0/24"}); key != "1.2.3.4" {
		t.Fatalf("key = %q, want forwarded address", key)
	}
}
