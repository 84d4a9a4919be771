package test

import (
	"fmt"
	"strings"
	"time"
)

// FeedEntry describes one entry of a generated test feed.
type FeedEntry struct {
	VideoID   string
	Title     string
	Published string
}

// FeedXML renders a minimal channel feed in the shape YouTube serves.
func FeedXML(channelID, author string, entries ...FeedEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
 <link rel="self" href="http://www.youtube.com/feeds/videos.xml?channel_id=%[1]s"/>
 <id>yt:channel:%[1]s</id>
 <yt:channelId>%[1]s</yt:channelId>
 <title>%[2]s</title>
 <link rel="alternate" href="https://www.youtube.com/channel/%[1]s"/>
 <author>
  <name>%[2]s</name>
  <uri>https://www.youtube.com/channel/%[1]s</uri>
 </author>
 <published>2015-01-01T00:00:00+00:00</published>
`, channelID, author)
	for _, e := range entries {
		fmt.Fprintf(&b, ` <entry>
  <id>yt:video:%[1]s</id>
  <yt:videoId>%[1]s</yt:videoId>
  <title>%[2]s</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=%[1]s"/>
  <author><name>%[4]s</name></author>
  <published>%[3]s</published>
  <updated>%[3]s</updated>
 </entry>
`, e.VideoID, e.Title, e.Published, author)
	}
	b.WriteString("</feed>\n")
	return b.String()
}

// RFC3339 formats t the way feed entries carry publish times.
func RFC3339(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05+00:00")
}
