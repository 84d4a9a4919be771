// Package remote talks to the yt-sub HTTP API on behalf of the CLI.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"yt-sub/internal/models"
	"yt-sub/internal/youtube"
)

// DefaultHost is used when neither --api-host nor YTSUB_API_HOST is set.
const DefaultHost = "https://yt-sub-api.example.com"

// APIKeyHeader carries the account key on DELETE /account.
const APIKeyHeader = "X-API-KEY"

// Client calls the account and channel endpoints.
type Client struct {
	host string
	http *http.Client
}

func NewClient(host string, client *http.Client) *Client {
	if host == "" {
		host = DefaultHost
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{host: strings.TrimRight(host, "/"), http: client}
}

// RequestError is a non-success response of the API.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API request failed with status %d", e.Status)
	}
	return e.Body
}

// ChannelData resolves a channel handle through the API. Transient failures
// are retried; a missing channel or throttling is returned at once.
func (c *Client) ChannelData(ctx context.Context, handle string) (youtube.ChannelData, error) {
	var (
		data    youtube.ChannelData
		lastErr error
	)
	endpoint := fmt.Sprintf("%s/channel_data/%s", c.host, url.PathEscape(handle))

	err := retry.Do(
		func() error {
			lastErr = c.channelData(ctx, endpoint, &data)
			if lastErr == nil {
				return nil
			}
			var reqErr *RequestError
			switch {
			case errors.Is(lastErr, youtube.ErrChannelNotFound), errors.Is(lastErr, youtube.ErrThrottled):
				return retry.Unrecoverable(lastErr)
			case errors.As(lastErr, &reqErr) && reqErr.Status < 500:
				return retry.Unrecoverable(lastErr)
			}
			return lastErr
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		if lastErr != nil {
			return youtube.ChannelData{}, lastErr
		}
		return youtube.ChannelData{}, err
	}
	return data, nil
}

func (c *Client) channelData(ctx context.Context, endpoint string, data *youtube.ChannelData) error {
	resp, body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(body, data); err != nil {
			return fmt.Errorf("failed to decode channel data: %w", err)
		}
		return nil
	case http.StatusNotFound:
		return youtube.ErrChannelNotFound
	case http.StatusServiceUnavailable:
		return youtube.ErrThrottled
	default:
		return &RequestError{Status: resp.StatusCode, Body: string(body)}
	}
}

// Register creates a remote account for the settings and returns its key.
func (c *Client) Register(ctx context.Context, settings models.Settings) (string, error) {
	resp, body, err := c.sendJSON(ctx, http.MethodPost, "/account", settings)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", &RequestError{Status: resp.StatusCode, Body: string(body)}
	}

	var out struct {
		APIKey string `json:"api_key"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode register response: %w", err)
	}
	if out.APIKey == "" {
		return "", errors.New("register response without api_key")
	}
	return out.APIKey, nil
}

// Sync replaces the remote settings. The settings must carry the api key.
func (c *Client) Sync(ctx context.Context, settings models.Settings) error {
	if settings.APIKey == "" {
		return errors.New("settings have no api_key, run 'ytsub register' first")
	}
	resp, body, err := c.sendJSON(ctx, http.MethodPut, "/account", settings)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &RequestError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// Unregister deletes the remote account.
func (c *Client) Unregister(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return errors.New("settings have no api_key, nothing to unregister")
	}
	resp, body, err := c.do(ctx, http.MethodDelete, c.host+"/account", nil, map[string]string{APIKeyHeader: apiKey})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &RequestError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, v any) (*http.Response, []byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, method, c.host+path, payload, map[string]string{"Content-Type": "application/json"})
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, headers map[string]string) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to call %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, bytes.TrimSpace(body), nil
}
