package models

import "time"

// Video is a single entry of a channel feed. It is rebuilt on every poll.
type Video struct {
	Channel     string
	Title       string
	Link        string
	PublishedAt time.Time
}
