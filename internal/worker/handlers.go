package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"yt-sub/internal/models"
	"yt-sub/pkg/tasks"
)

// AccountLister returns the ids of every registered account.
type AccountLister interface {
	AccountIDs(ctx context.Context) ([]string, error)
}

// CycleRunner runs one poll cycle for an account.
type CycleRunner interface {
	RunOnce(ctx context.Context, accountID string) error
}

type TaskHandler struct {
	asynqClient tasks.TaskEnqueuer
	accounts    AccountLister
	cycle       CycleRunner
	logger      *zap.SugaredLogger

	httpClient *http.Client
	uptimeURL  string
}

func NewTaskHandler(client tasks.TaskEnqueuer, accounts AccountLister, cycle CycleRunner, logger *zap.SugaredLogger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &TaskHandler{
		asynqClient: client,
		accounts:    accounts,
		cycle:       cycle,
		logger:      logger,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithUptime configures the URL pinged by uptime:ping tasks.
func (h *TaskHandler) WithUptime(client *http.Client, url string) *TaskHandler {
	if client != nil {
		h.httpClient = client
	}
	h.uptimeURL = url
	return h
}

// HandleCheckAllAccountsTask enqueues one account:check task per account so
// a slow or failing account never delays the others.
func (h *TaskHandler) HandleCheckAllAccountsTask(ctx context.Context, t *asynq.Task) error {
	h.logger.Info("Checking all accounts...")

	ids, err := h.accounts.AccountIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get account ids: %w", err)
	}

	enqueued := 0
	for _, id := range ids {
		ok, err := tasks.EnqueueCheckAccount(h.asynqClient, id)
		if err != nil {
			h.logger.Errorw("failed to enqueue check account task", "account", id, "error", err)
			continue
		}
		if !ok {
			h.logger.Debugw("check already pending", "account", id)
			continue
		}
		enqueued++
	}

	h.logger.Infow("Finished checking all accounts.", "accounts", len(ids), "enqueued", enqueued)
	return nil
}

// HandleCheckAccountTask runs a poll cycle. Settings that can never succeed
// are not retried.
func (h *TaskHandler) HandleCheckAccountTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.CheckAccountTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w: %w", err, asynq.SkipRetry)
	}
	h.logger.Debugw("Checking account", "account", p.AccountID)

	err := h.cycle.RunOnce(ctx, p.AccountID)
	switch {
	case err == nil:
		return nil
	case models.IsConfigError(err), errors.Is(err, models.ErrAccountNotFound):
		h.logger.Warnw("Skipping account", "account", p.AccountID, "error", err)
		return fmt.Errorf("account %s: %w: %w", p.AccountID, err, asynq.SkipRetry)
	default:
		return fmt.Errorf("failed to check account %s: %w", p.AccountID, err)
	}
}

// HandleUptimePingTask reports liveness to an external monitor.
func (h *TaskHandler) HandleUptimePingTask(ctx context.Context, t *asynq.Task) error {
	if h.uptimeURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.uptimeURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build uptime request: %w: %w", err, asynq.SkipRetry)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to ping uptime url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("uptime ping returned status %d", resp.StatusCode)
	}
	return nil
}
