package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"yt-sub/internal/accounts"
	"yt-sub/internal/config"
	"yt-sub/internal/logger"
	"yt-sub/internal/notify"
	"yt-sub/internal/poll"
	"yt-sub/internal/worker"
	"yt-sub/internal/youtube"
	"yt-sub/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

const (
	retryBaseDelay = time.Minute
	retryMaxDelay  = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile, Console: true}); err != nil {
		logger.L.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	log := logger.Named("worker")

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
	cycle := poll.New(
		repo,
		youtube.NewFetcher(httpClient, cfg.FeedHost),
		notify.NewDispatcher(httpClient, log.Named("notify")),
		log.Named("poll"),
	)
	cycle.Policy = poll.AdvanceWhenDispatched
	cycle.CronMode = true
	cycle.EnforceCaps = true

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := retryDelay(n)
				log.Infow("Task failed, retrying", "type", task.Type(), "attempt", n+1, "delay", delay, "error", err)
				return delay
			},
			Logger: log,
		},
	)

	taskHandler := worker.NewTaskHandler(client, repo, cycle, log).
		WithUptime(httpClient, cfg.UptimeURL)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCheckAllAccounts, taskHandler.HandleCheckAllAccountsTask)
	mux.HandleFunc(tasks.TypeCheckAccount, taskHandler.HandleCheckAccountTask)
	mux.HandleFunc(tasks.TypeUptimePing, taskHandler.HandleUptimePingTask)

	log.Infow("Worker starting", "commit", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}

// retryDelay doubles from retryBaseDelay for each failed attempt and caps at
// retryMaxDelay.
func retryDelay(n int) time.Duration {
	delay := retryBaseDelay
	for i := 0; i < n; i++ {
		delay *= 2
		if delay > retryMaxDelay {
			return retryMaxDelay
		}
	}
	return delay
}
