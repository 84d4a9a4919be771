package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireAPIKey(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RequireAPIKey(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/account", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Missing X-API-KEY header\n", rr.Body.String())
	})

	t.Run("key in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/account", nil)
		req.Header.Set(APIKeyHeader, "k1")
		rr := httptest.NewRecorder()

		RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := APIKeyFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "k1", key)
		})).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiterMiddleware(rate.Limit(0.001), 2, nil)
	handler := rl.Middleware(okHandler)

	send := func(remote, key string) int {
		req := httptest.NewRequest(http.MethodGet, "/uptime", nil)
		req.RemoteAddr = remote
		if key != "" {
			req.Header.Set(APIKeyHeader, key)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234", ""))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5678", ""))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:9999", ""))

	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234", ""))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234", "k1"))
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "ip:10.0.0.1", clientKey(req, false))
	assert.Equal(t, "ip:203.0.113.7", clientKey(req, true))
}

func TestRateLimiter_IgnoresForwardedForByDefault(t *testing.T) {
	rl := NewRateLimiterMiddleware(rate.Limit(0.001), 1, nil)
	handler := rl.Middleware(okHandler)

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/uptime", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.2"))
}

func TestOnlySSL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/uptime?x=1", nil)
	rr := httptest.NewRecorder()
	OnlySSL(okHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMovedPermanently, rr.Code)
	assert.Equal(t, "https://api.example.com/uptime?x=1", rr.Header().Get("Location"))

	req.Header.Set("x-ssl", "true")
	rr = httptest.NewRecorder()
	OnlySSL(okHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Logging(zap.New(core).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/uptime", nil))

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusTeapot), entries[0].ContextMap()["status"])
	assert.Equal(t, "/uptime", entries[0].ContextMap()["path"])
}
