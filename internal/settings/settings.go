// Package settings keeps the CLI settings in a YAML file and the last run
// marker in a sibling text file.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"yt-sub/internal/models"
)

// FileStore reads and writes a single local account.
type FileStore struct {
	Path        string
	LastRunPath string
}

// DefaultPath is ~/.config/yt-sub/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "yt-sub", "config.yaml"), nil
}

// DefaultLastRunPath is ~/.yt-sub/last_run_at.txt.
func DefaultLastRunPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".yt-sub", "last_run_at.txt"), nil
}

// New returns a FileStore; empty paths fall back to the defaults.
func New(path, lastRunPath string) (*FileStore, error) {
	var err error
	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if lastRunPath == "" {
		if lastRunPath, err = DefaultLastRunPath(); err != nil {
			return nil, err
		}
	}
	return &FileStore{Path: path, LastRunPath: lastRunPath}, nil
}

// Init writes default settings. It refuses to overwrite an existing file.
func (f *FileStore) Init() (models.Settings, error) {
	if _, err := os.Stat(f.Path); err == nil {
		return models.Settings{}, fmt.Errorf("Config file at '%s' is already initialized!", f.Path)
	}
	s := models.DefaultSettings()
	if err := f.Save(s); err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

func (f *FileStore) Read() (models.Settings, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Settings{}, fmt.Errorf("Config file at '%s' does not exist! Run 'ytsub init' to initialize it.", f.Path)
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var s models.Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return models.Settings{}, fmt.Errorf("failed to parse config file %s: %w", f.Path, err)
	}
	if s.Channels == nil {
		s.Channels = []models.Channel{}
	}
	return s, nil
}

func (f *FileStore) Save(s models.Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Render formats the settings for display, prefixed with the file path.
func (f *FileStore) Render(s models.Settings) (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode settings: %w", err)
	}
	return fmt.Sprintf("%s\n\n%s", f.Path, data), nil
}

// Settings reads the file. The account id is ignored since the file holds
// exactly one account.
func (f *FileStore) Settings(ctx context.Context, accountID string) (models.Settings, error) {
	return f.Read()
}

func (f *FileStore) LastRunAt(ctx context.Context, accountID string) (time.Time, bool, error) {
	data, err := os.ReadFile(f.LastRunPath)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last run file: %w", err)
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse last run file: %w", err)
	}
	return t.UTC(), true, nil
}

func (f *FileStore) SetLastRunAt(ctx context.Context, accountID string, t time.Time) error {
	if err := os.MkdirAll(filepath.Dir(f.LastRunPath), 0o755); err != nil {
		return fmt.Errorf("failed to create last run directory: %w", err)
	}
	if err := os.WriteFile(f.LastRunPath, []byte(t.UTC().Format(time.RFC3339)), 0o600); err != nil {
		return fmt.Errorf("failed to write last run file: %w", err)
	}
	return nil
}
