package main

import (
	"fmt"

	"github.com/hibiken/asynq"
	"yt-sub/internal/config"
	"yt-sub/internal/logger"
	"yt-sub/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

const uptimeSchedule = "@every 10m"

// registrar is implemented by asynq.Scheduler.
type registrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile, Console: true}); err != nil {
		logger.L.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	log := logger.Named("scheduler")

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{},
	)

	if err := registerTasks(scheduler, cfg); err != nil {
		log.Fatalf("could not register tasks: %v", err)
	}

	log.Infow("Scheduler starting", "commit", CommitSHA, "schedule", cfg.CheckSchedule)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("could not run scheduler: %v", err)
	}
}

func registerTasks(s registrar, cfg *config.Config) error {
	task, err := tasks.NewCheckAllAccountsTask()
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}
	if _, err := s.Register(cfg.CheckSchedule, task); err != nil {
		return fmt.Errorf("could not register %s: %w", tasks.TypeCheckAllAccounts, err)
	}

	if cfg.UptimeURL == "" {
		return nil
	}
	ping, err := tasks.NewUptimePingTask()
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}
	if _, err := s.Register(uptimeSchedule, ping); err != nil {
		return fmt.Errorf("could not register %s: %w", tasks.TypeUptimePing, err)
	}
	return nil
}
