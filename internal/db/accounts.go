package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"yt-sub/internal/models"
)

// GetAccountIDs returns the ids of all registered accounts.
func GetAccountIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := DB.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return ids, nil
}

// GetAccount returns the account with the given id, or models.ErrAccountNotFound.
func GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{}
	query := DB.Rebind(`SELECT id, settings_json, last_run_at FROM users WHERE id = ?`)
	err := DB.GetContext(ctx, account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// AccountExists reports whether an account with the given id is stored.
func AccountExists(ctx context.Context, id string) (bool, error) {
	var count int
	query := DB.Rebind(`SELECT COUNT(*) FROM users WHERE id = ?`)
	if err := DB.GetContext(ctx, &count, query, id); err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	return count > 0, nil
}

// UpsertAccount inserts an account or replaces the settings of an existing
// one. The last run marker is left untouched.
func UpsertAccount(ctx context.Context, id, settingsJSON string) error {
	query := DB.Rebind(`
		INSERT INTO users (id, settings_json)
		VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET
			settings_json = excluded.settings_json
	`)
	if _, err := DB.ExecContext(ctx, query, id, settingsJSON); err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// DeleteAccount removes the account together with its last run marker.
func DeleteAccount(ctx context.Context, id string) error {
	query := DB.Rebind(`DELETE FROM users WHERE id = ?`)
	if _, err := DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// UpdateLastRunAt records the start time of the last completed cycle.
func UpdateLastRunAt(ctx context.Context, id string, t time.Time) error {
	query := DB.Rebind(`UPDATE users SET last_run_at = ? WHERE id = ?`)
	res, err := DB.ExecContext(ctx, query, t.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}
