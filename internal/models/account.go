package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Account represents a registered remote account in the database.
type Account struct {
	ID           string     `db:"id"`
	SettingsJSON string     `db:"settings_json"`
	LastRunAt    *time.Time `db:"last_run_at"`
}

// ErrAccountNotFound is returned by account stores for unknown ids.
var ErrAccountNotFound = errors.New("account not found")

// Settings decodes the stored settings document.
func (a Account) Settings() (Settings, error) {
	var s Settings
	if err := json.Unmarshal([]byte(a.SettingsJSON), &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings of account %s: %w", a.ID, err)
	}
	return s, nil
}
