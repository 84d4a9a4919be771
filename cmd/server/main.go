package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"yt-sub/internal/accounts"
	"yt-sub/internal/config"
	"yt-sub/internal/handlers"
	"yt-sub/internal/logger"
	"yt-sub/internal/middleware"
	"yt-sub/internal/notify"
	"yt-sub/internal/youtube"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile, Console: true}); err != nil {
		logger.L.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	log := logger.Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := accounts.Open(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to open account store: %v", err)
	}
	defer closeRepo()

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resolver, err := newResolver(ctx, cfg, httpClient)
	if err != nil {
		log.Fatalf("Failed to create channel resolver: %v", err)
	}

	h := handlers.New(repo, resolver, notify.NewDispatcher(httpClient, log), client, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, h, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("Shutdown failed", "error", err)
		}
	}()

	log.Infow("Starting server", "port", cfg.Port, "commit", CommitSHA)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

// newResolver prefers the Data API and falls back to scraping the channel
// page when no key is configured or the quota is exhausted.
func newResolver(ctx context.Context, cfg *config.Config, client *http.Client) (youtube.Resolver, error) {
	page := youtube.NewPageResolver(client, "")
	if cfg.YoutubeAPIKey == "" {
		return page, nil
	}
	api, err := youtube.NewAPIResolver(ctx, cfg.YoutubeAPIKey)
	if err != nil {
		return nil, err
	}
	return youtube.ChainResolver{api, page}, nil
}

func newRouter(cfg *config.Config, h *handlers.Handlers, log *zap.SugaredLogger) http.Handler {
	r := h.Router()
	r.Use(
		mux.MiddlewareFunc(middleware.Logging(log)),
		middleware.SecurityHeaders,
	)
	if cfg.OnlySSL {
		r.Use(middleware.OnlySSL)
	}
	limiter := middleware.NewRateLimiterMiddleware(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, log)
	limiter.TrustProxy = cfg.TrustProxy
	r.Use(limiter.Middleware, middleware.Timeout)
	return r
}
