package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"yt-sub/internal/models"
)

// AccountStore exposes the users table as an account repository.
type AccountStore struct{}

func NewAccountStore() *AccountStore {
	return &AccountStore{}
}

func (s *AccountStore) AccountIDs(ctx context.Context) ([]string, error) {
	return GetAccountIDs(ctx)
}

func (s *AccountStore) Exists(ctx context.Context, id string) (bool, error) {
	return AccountExists(ctx, id)
}

func (s *AccountStore) Settings(ctx context.Context, id string) (models.Settings, error) {
	account, err := GetAccount(ctx, id)
	if err != nil {
		return models.Settings{}, err
	}
	return account.Settings()
}

func (s *AccountStore) Save(ctx context.Context, id string, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return UpsertAccount(ctx, id, string(data))
}

func (s *AccountStore) Delete(ctx context.Context, id string) error {
	return DeleteAccount(ctx, id)
}

func (s *AccountStore) LastRunAt(ctx context.Context, id string) (time.Time, bool, error) {
	account, err := GetAccount(ctx, id)
	if err != nil {
		return time.Time{}, false, err
	}
	if account.LastRunAt == nil {
		return time.Time{}, false, nil
	}
	return account.LastRunAt.UTC(), true, nil
}

func (s *AccountStore) SetLastRunAt(ctx context.Context, id string, t time.Time) error {
	return UpdateLastRunAt(ctx, id, t)
}
