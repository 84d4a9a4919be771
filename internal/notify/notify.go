package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"yt-sub/internal/models"
)

const (
	slackUsername  = "yt-sub"
	slackIconEmoji = ":exclamation:"
)

// ErrNotImplemented is returned for notifier variants without a delivery path.
var ErrNotImplemented = errors.New("notifier not implemented")

// NotifyError is a delivery failure of a single notifier.
type NotifyError struct {
	Kind models.NotifierKind
	Err  error
}

func (e *NotifyError) Error() string {
	return e.Err.Error()
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

type slackPayload struct {
	Channel     string `json:"channel"`
	IconEmoji   string `json:"icon_emoji"`
	Username    string `json:"username"`
	Text        string `json:"text"`
	UnfurlLinks bool   `json:"unfurl_links"`
}

// Dispatcher delivers rendered messages to notifiers.
type Dispatcher struct {
	client *http.Client
	logger *zap.SugaredLogger

	// outMu serializes log notifiers writing to out concurrently.
	outMu sync.Mutex
	out   io.Writer
}

// NewDispatcher creates a Dispatcher. Log notifications go to stdout, or to
// logger when running in cron mode.
func NewDispatcher(client *http.Client, logger *zap.SugaredLogger) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{client: client, out: os.Stdout, logger: logger}
}

// WithOutput redirects plain log notifications.
func (d *Dispatcher) WithOutput(w io.Writer) *Dispatcher {
	d.out = w
	return d
}

// Notify delivers messages through a single notifier.
func (d *Dispatcher) Notify(ctx context.Context, notifier models.Notifier, messages []string, cronMode bool) error {
	switch notifier.Kind {
	case models.NotifierLog:
		d.outMu.Lock()
		defer d.outMu.Unlock()
		for _, msg := range messages {
			if cronMode && d.logger != nil {
				d.logger.Info(msg)
				continue
			}
			if _, err := fmt.Fprintln(d.out, msg); err != nil {
				return &NotifyError{Kind: notifier.Kind, Err: err}
			}
		}
		return nil
	case models.NotifierSlack:
		if notifier.Slack == nil {
			return &NotifyError{Kind: notifier.Kind, Err: errors.New("missing slack config")}
		}
		if err := d.notifySlack(ctx, *notifier.Slack, strings.Join(messages, "\n\n")); err != nil {
			return &NotifyError{Kind: notifier.Kind, Err: err}
		}
		return nil
	case models.NotifierTelegram:
		return &NotifyError{Kind: notifier.Kind, Err: ErrNotImplemented}
	default:
		return &NotifyError{Kind: notifier.Kind, Err: fmt.Errorf("unknown notifier kind %q", notifier.Kind)}
	}
}

func (d *Dispatcher) notifySlack(ctx context.Context, cfg models.SlackConfig, text string) error {
	payload, err := json.Marshal(slackPayload{
		Channel:     cfg.Channel,
		IconEmoji:   slackIconEmoji,
		Username:    slackUsername,
		Text:        text,
		UnfurlLinks: false,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read slack response: %w", err)
	}
	return fmt.Errorf("Failed to send message to Slack: %s", body)
}
