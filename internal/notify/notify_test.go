package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"yt-sub/internal/models"
)

var testVideo = models.Video{
	Channel:     "Test Channel",
	Title:       "A video",
	Link:        "https://www.youtube.com/watch?v=abc123",
	PublishedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
}

func TestRender(t *testing.T) {
	msg, err := Render(testVideo, models.LogNotifier())
	require.NoError(t, err)
	assert.Equal(t, "New video - Test Channel A video https://www.youtube.com/watch?v=abc123", msg)

	msg, err = Render(testVideo, models.SlackNotifier("https://hooks", "general"))
	require.NoError(t, err)
	assert.Equal(t, "*New video - Test Channel* <https://www.youtube.com/watch?v=abc123|A video>", msg)

	_, err = Render(testVideo, models.Notifier{Kind: models.NotifierTelegram})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestRenderSlackLinkRoundTrip(t *testing.T) {
	links := []string{
		"https://www.youtube.com/watch?v=abc123",
		"https://www.youtube.com/watch?v=x_Y-z&t=42s",
	}
	linkRegex := regexp.MustCompile(`<([^|>]+)\|`)

	for _, link := range links {
		v := testVideo
		v.Link = link
		msg, err := Render(v, models.SlackNotifier("https://hooks", "general"))
		require.NoError(t, err)

		m := linkRegex.FindStringSubmatch(msg)
		require.Len(t, m, 2)
		assert.Equal(t, link, m[1])
		assert.Contains(t, msg, v.Title)
	}
}

func TestRenderSlackEscapesText(t *testing.T) {
	v := testVideo
	v.Channel = "Tom & Jerry"
	v.Title = "a <b> c > d"

	msg, err := Render(v, models.SlackNotifier("https://hooks", "general"))
	require.NoError(t, err)
	assert.Equal(t, "*New video - Tom &amp; Jerry* <https://www.youtube.com/watch?v=abc123|a &lt;b&gt; c &gt; d>", msg)

	// the log line is plain text
	msg, err = Render(v, models.LogNotifier())
	require.NoError(t, err)
	assert.Equal(t, "New video - Tom & Jerry a <b> c > d https://www.youtube.com/watch?v=abc123", msg)
}

func TestNotifyLog(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(nil, nil).WithOutput(&buf)

	err := d.Notify(context.Background(), models.LogNotifier(), []string{"one", "two"}, false)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestNotifyLogCronMode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var buf bytes.Buffer
	d := NewDispatcher(nil, zap.New(core).Sugar()).WithOutput(&buf)

	err := d.Notify(context.Background(), models.LogNotifier(), []string{"one"}, true)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "one", logs.All()[0].Message)
}

func TestNotifySlack(t *testing.T) {
	var got slackPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/slack_webhook", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	d := NewDispatcher(server.Client(), nil)
	err := d.Notify(context.Background(), models.SlackNotifier(server.URL+"/slack_webhook", "videos"), []string{"first", "second"}, false)

	require.NoError(t, err)
	assert.Equal(t, slackPayload{
		Channel:     "videos",
		IconEmoji:   ":exclamation:",
		Username:    "yt-sub",
		Text:        "first\n\nsecond",
		UnfurlLinks: false,
	}, got)
}

func TestNotifySlackFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Invalid slack webhook URL"))
	}))
	defer server.Close()

	d := NewDispatcher(server.Client(), nil)
	err := d.Notify(context.Background(), models.SlackNotifier(server.URL, "videos"), []string{"msg"}, false)

	var notifyErr *NotifyError
	require.ErrorAs(t, err, &notifyErr)
	assert.Equal(t, models.NotifierSlack, notifyErr.Kind)
	assert.Contains(t, err.Error(), "Invalid slack webhook URL")
}

func TestNotifyTelegramNotImplemented(t *testing.T) {
	d := NewDispatcher(nil, nil)
	err := d.Notify(context.Background(), models.Notifier{Kind: models.NotifierTelegram}, []string{"msg"}, false)
	assert.ErrorIs(t, err, ErrNotImplemented)
}
