package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"yt-sub/internal/config"
	"yt-sub/internal/handlers"
	"yt-sub/internal/kv"
	"yt-sub/internal/notify"
	"yt-sub/internal/test"
	"yt-sub/internal/youtube"
)

func newTestHandlers() *handlers.Handlers {
	log := zap.NewNop().Sugar()
	repo := kv.NewAccountStore(kv.NewMemoryStore())
	return handlers.New(repo, youtube.NewPageResolver(nil, ""), notify.NewDispatcher(nil, log), &test.MockTaskEnqueuer{}, log)
}

func TestNewRouter_OnlySSL(t *testing.T) {
	cfg := &config.Config{OnlySSL: true, RateLimitRPS: 10, RateLimitBurst: 10}
	router := newRouter(cfg, newTestHandlers(), zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/uptime", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMovedPermanently, rr.Code)
	assert.Equal(t, "https://api.example.com/uptime", rr.Header().Get("Location"))

	req.Header.Set("x-ssl", "true")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestNewRouter_RateLimited(t *testing.T) {
	cfg := &config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1}
	router := newRouter(cfg, newTestHandlers(), zap.NewNop().Sugar())

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uptime", nil))
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewRouter_TrustProxy(t *testing.T) {
	cfg := &config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1, TrustProxy: true}
	router := newRouter(cfg, newTestHandlers(), zap.NewNop().Sugar())

	codes := make([]int, 0, 2)
	for _, ip := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/uptime", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
}

func TestNewResolver_WithoutAPIKey(t *testing.T) {
	resolver, err := newResolver(context.Background(), &config.Config{}, http.DefaultClient)

	require.NoError(t, err)
	assert.IsType(t, &youtube.PageResolver{}, resolver)
}

func TestNewResolver_WithAPIKey(t *testing.T) {
	resolver, err := newResolver(context.Background(), &config.Config{YoutubeAPIKey: "key"}, http.DefaultClient)

	require.NoError(t, err)
	chain, ok := resolver.(youtube.ChainResolver)
	require.True(t, ok)
	assert.Len(t, chain, 2)
}
