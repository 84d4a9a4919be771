package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// APIKeyContextKey is the key for the account API key in the context.
const APIKeyContextKey = contextKey("api_key")

// APIKeyHeader carries the account key.
const APIKeyHeader = "X-API-KEY"

// APIKeyMiddleware stores the X-API-KEY header, when present, in the context.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
			r = r.WithContext(context.WithValue(r.Context(), APIKeyContextKey, key))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIKey rejects requests without an X-API-KEY header.
func RequireAPIKey(next http.Handler) http.Handler {
	return APIKeyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := APIKeyFromContext(r.Context()); !ok {
			http.Error(w, "Missing X-API-KEY header", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// APIKeyFromContext returns the key stored by APIKeyMiddleware.
func APIKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(APIKeyContextKey).(string)
	return key, ok && key != ""
}
