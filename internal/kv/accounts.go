package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"yt-sub/internal/models"
)

const (
	userIDsKey      = "user_ids"
	lastRunAtPrefix = "last_run_at_"
)

// AccountStore keeps accounts in a Store: the id list under "user_ids", the
// settings document under the id itself and the marker under
// "last_run_at_<id>".
type AccountStore struct {
	store Store
	// guards the read-modify-write of the id list
	mu sync.Mutex
}

func NewAccountStore(store Store) *AccountStore {
	return &AccountStore{store: store}
}

func lastRunAtKey(id string) string {
	return lastRunAtPrefix + id
}

func (a *AccountStore) AccountIDs(ctx context.Context) ([]string, error) {
	raw, err := a.store.Get(ctx, userIDsKey)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account ids: %w", err)
	}
	return splitIDs(string(raw)), nil
}

func splitIDs(raw string) []string {
	ids := []string{}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (a *AccountStore) Exists(ctx context.Context, id string) (bool, error) {
	_, err := a.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	return true, nil
}

func (a *AccountStore) Settings(ctx context.Context, id string) (models.Settings, error) {
	raw, err := a.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.Settings{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return models.Account{ID: id, SettingsJSON: string(raw)}.Settings()
}

// Save writes the settings and registers the id when it is new.
func (a *AccountStore) Save(ctx context.Context, id string, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := a.store.Put(ctx, id, data); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	ids, err := a.AccountIDs(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	ids = append(ids, id)
	if err := a.store.Put(ctx, userIDsKey, []byte(strings.Join(ids, ","))); err != nil {
		return fmt.Errorf("failed to write account ids: %w", err)
	}
	return nil
}

// Delete removes the id, its settings and its last run marker.
func (a *AccountStore) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	ids, err := a.AccountIDs(ctx)
	if err != nil {
		a.mu.Unlock()
		return err
	}
	ids = slices.DeleteFunc(ids, func(s string) bool { return s == id })
	err = a.store.Put(ctx, userIDsKey, []byte(strings.Join(ids, ",")))
	a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write account ids: %w", err)
	}

	if err := a.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	if err := a.store.Delete(ctx, lastRunAtKey(id)); err != nil {
		return fmt.Errorf("failed to delete last run: %w", err)
	}
	return nil
}

func (a *AccountStore) LastRunAt(ctx context.Context, id string) (time.Time, bool, error) {
	raw, err := a.store.Get(ctx, lastRunAtKey(id))
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last run: %w", err)
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse last run %q: %w", raw, err)
	}
	return t.UTC(), true, nil
}

func (a *AccountStore) SetLastRunAt(ctx context.Context, id string, t time.Time) error {
	if err := a.store.Put(ctx, lastRunAtKey(id), []byte(t.UTC().Format(time.RFC3339))); err != nil {
		return fmt.Errorf("failed to write last run: %w", err)
	}
	return nil
}
