package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"yt-sub/internal/models"
)

// FetchError is returned when a channel feed cannot be retrieved or parsed.
type FetchError struct {
	ChannelID string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed for channel %s: %v", e.ChannelID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves channel feeds and turns them into videos.
type Fetcher struct {
	client   *http.Client
	feedHost string
}

// NewFetcher creates a Fetcher. An empty feedHost selects the public YouTube host.
func NewFetcher(client *http.Client, feedHost string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if feedHost == "" {
		feedHost = models.DefaultFeedHost
	}
	return &Fetcher{
		client:   client,
		feedHost: strings.TrimRight(feedHost, "/"),
	}
}

// FetchVideos downloads and parses the feed of a channel. Any malformed entry
// fails the whole fetch.
func (f *Fetcher) FetchVideos(ctx context.Context, channel models.Channel) ([]models.Video, error) {
	feedURL := models.FeedURL(f.feedHost, channel.ChannelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &FetchError{ChannelID: channel.ChannelID, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{ChannelID: channel.ChannelID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{ChannelID: channel.ChannelID, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{ChannelID: channel.ChannelID, Err: err}
	}

	videos, err := ParseFeed(feed)
	if err != nil {
		return nil, &FetchError{ChannelID: channel.ChannelID, Err: err}
	}
	return videos, nil
}

// ValidateID reports whether the feed host serves a feed for channelID.
func (f *Fetcher) ValidateID(ctx context.Context, channelID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, models.FeedURL(f.feedHost, channelID), nil)
	if err != nil {
		return false, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// ParseFeed converts a parsed channel feed into videos. Publish times are
// read from the raw entry text as RFC 3339.
func ParseFeed(feed *gofeed.Feed) ([]models.Video, error) {
	channelName := feed.Title
	if len(feed.Authors) > 0 && feed.Authors[0].Name != "" {
		channelName = feed.Authors[0].Name
	}
	if channelName == "" {
		return nil, errors.New("feed has no author")
	}

	videos := make([]models.Video, 0, len(feed.Items))
	for _, item := range feed.Items {
		raw := strings.TrimSpace(item.Published)
		publishedAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("parse published time %q of %q: %w", raw, item.Title, err)
		}
		if item.Link == "" {
			return nil, fmt.Errorf("entry %q has no link", item.Title)
		}

		videos = append(videos, models.Video{
			Channel:     channelName,
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: publishedAt.UTC(),
		})
	}

	return videos, nil
}
