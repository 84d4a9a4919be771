package tasks

import (
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer is satisfied by *asynq.Client and by test mocks.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CheckAccountUniqueness keeps a single pending check per account.
const CheckAccountUniqueness = 5 * time.Minute

// EnqueueCheckAccount schedules a poll of one account. It reports false
// without error when a check for the account is already pending, since
// overlapping cycles would notify twice.
func EnqueueCheckAccount(e TaskEnqueuer, accountID string) (bool, error) {
	task, err := NewCheckAccountTask(accountID)
	if err != nil {
		return false, err
	}
	_, err = e.Enqueue(task, asynq.Unique(CheckAccountUniqueness), asynq.MaxRetry(3))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
