package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterMiddleware holds a rate limiter per client. Clients are keyed
// by API key when one was sent and by IP address otherwise.
type RateLimiterMiddleware struct {
	// TrustProxy takes the client IP from X-Forwarded-For. Enable it only
	// behind a proxy that overwrites the header.
	TrustProxy bool

	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	// Rate is the number of events per second.
	rate rate.Limit
	// Burst is the burst size.
	burst  int
	logger *zap.SugaredLogger
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware.
func NewRateLimiterMiddleware(r rate.Limit, b int, logger *zap.SugaredLogger) *RateLimiterMiddleware {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RateLimiterMiddleware{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    b,
		logger:   logger,
	}
}

// Middleware is the actual middleware handler.
func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r, rl.TrustProxy)

		rl.mu.Lock()
		limiter, exists := rl.limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rl.rate, rl.burst)
			rl.limiters[key] = limiter
		}
		rl.mu.Unlock()

		if !limiter.Allow() {
			rl.logger.Warnw("Rate limit exceeded", "client", key, "path", r.URL.Path)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request, trustProxy bool) string {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return "key:" + key
	}
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return "ip:" + strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
