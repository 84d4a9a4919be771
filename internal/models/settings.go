package models

import (
	"errors"
	"fmt"
)

const (
	MaxChannels  = 100
	MaxNotifiers = 5
)

// ConfigError reports settings that must be rejected before any poll work.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid settings: " + e.Reason
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// Settings is the per-account aggregate of followed channels and notifiers.
// A nil Schedule means polls may run at any hour.
type Settings struct {
	Channels  []Channel  `json:"channels" yaml:"channels"`
	Notifiers []Notifier `json:"notifiers" yaml:"notifiers"`
	APIKey    string     `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Schedule  []int      `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// DefaultSettings returns settings with only the log notifier.
func DefaultSettings() Settings {
	return Settings{
		Channels:  []Channel{},
		Notifiers: []Notifier{LogNotifier()},
	}
}

// Validate enforces the caps applied to stored accounts on top of
// ValidateLocal.
func (s Settings) Validate() error {
	if len(s.Channels) > MaxChannels {
		return &ConfigError{Reason: fmt.Sprintf("too many channels: %d (max %d)", len(s.Channels), MaxChannels)}
	}
	if len(s.Notifiers) > MaxNotifiers {
		return &ConfigError{Reason: fmt.Sprintf("too many notifiers: %d (max %d)", len(s.Notifiers), MaxNotifiers)}
	}
	return s.ValidateLocal()
}

// ValidateLocal checks notifiers and schedule hours without any count limits.
func (s Settings) ValidateLocal() error {
	for _, n := range s.Notifiers {
		switch n.Kind {
		case NotifierLog, NotifierTelegram:
		case NotifierSlack:
			if n.Slack == nil || n.Slack.WebhookURL == "" {
				return &ConfigError{Reason: "slack notifier without webhook_url"}
			}
		default:
			return &ConfigError{Reason: fmt.Sprintf("unknown notifier kind %q", n.Kind)}
		}
	}
	for _, h := range s.Schedule {
		if h < 0 || h > 23 {
			return &ConfigError{Reason: fmt.Sprintf("schedule hour out of range: %d", h)}
		}
	}
	return nil
}

func (s Settings) ChannelByID(channelID string) (Channel, bool) {
	for _, c := range s.Channels {
		if c.ChannelID == channelID {
			return c, true
		}
	}
	return Channel{}, false
}

func (s Settings) ChannelByHandle(handle string) (Channel, bool) {
	for _, c := range s.Channels {
		if c.Handle == handle {
			return c, true
		}
	}
	return Channel{}, false
}

// SlackNotifier returns the first configured Slack notifier.
func (s Settings) SlackNotifier() (Notifier, bool) {
	for _, n := range s.Notifiers {
		if n.IsSlack() {
			return n, true
		}
	}
	return Notifier{}, false
}
