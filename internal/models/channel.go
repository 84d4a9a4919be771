package models

import "fmt"

// DefaultFeedHost serves the public per-channel video feeds.
const DefaultFeedHost = "https://www.youtube.com"

// Channel represents a followed YouTube channel.
type Channel struct {
	Handle      string `json:"handle" yaml:"handle"`
	Description string `json:"description" yaml:"description"`
	ChannelID   string `json:"channel_id" yaml:"channel_id"`
}

// URL is the public page of the channel.
func (c Channel) URL() string {
	return fmt.Sprintf("https://www.youtube.com/%s", c.Handle)
}

// RSSURL is the feed URL of the channel on the default feed host.
func (c Channel) RSSURL() string {
	return FeedURL(DefaultFeedHost, c.ChannelID)
}

// FeedURL builds the videos feed URL for a channel id on the given host.
func FeedURL(host, channelID string) string {
	return fmt.Sprintf("%s/feeds/videos.xml?channel_id=%s", host, channelID)
}

func (c Channel) String() string {
	return fmt.Sprintf("name: %s\nhandle: %s\nchannel_id: %s\nchannel_url: %s\nRSS feed: %s",
		c.Description, c.Handle, c.ChannelID, c.URL(), c.RSSURL())
}
