package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeCheckAccount     = "account:check"
	TypeCheckAllAccounts = "accounts:check"
	TypeUptimePing       = "uptime:ping"
)

type CheckAccountTaskPayload struct {
	AccountID string
}

func NewCheckAccountTask(accountID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CheckAccountTaskPayload{AccountID: accountID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCheckAccount, payload), nil
}

func NewCheckAllAccountsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeCheckAllAccounts, nil), nil
}

func NewUptimePingTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeUptimePing, nil), nil
}
