package notify

import (
	"fmt"
	"strings"

	"yt-sub/internal/models"
)

// Render formats the notification line for a video. It performs no I/O.
func Render(video models.Video, notifier models.Notifier) (string, error) {
	switch notifier.Kind {
	case models.NotifierLog:
		return fmt.Sprintf("New video - %s %s %s", video.Channel, video.Title, video.Link), nil
	case models.NotifierSlack:
		return fmt.Sprintf("*New video - %s* <%s|%s>", slackEscape(video.Channel), video.Link, slackEscape(video.Title)), nil
	case models.NotifierTelegram:
		return "", ErrNotImplemented
	default:
		return "", fmt.Errorf("unknown notifier kind %q", notifier.Kind)
	}
}

// slackEscaper applies the three entities Slack requires in message text.
var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func slackEscape(s string) string {
	return slackEscaper.Replace(s)
}

// RenderAll formats every video for one notifier.
func RenderAll(videos []models.Video, notifier models.Notifier) ([]string, error) {
	messages := make([]string, 0, len(videos))
	for _, v := range videos {
		msg, err := Render(v, notifier)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
