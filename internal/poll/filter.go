package poll

import (
	"time"

	"yt-sub/internal/models"
)

// FilterFresh returns the videos published strictly after cutoff. A video
// published exactly at cutoff was covered by the previous run.
func FilterFresh(videos []models.Video, cutoff time.Time) []models.Video {
	fresh := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if v.PublishedAt.After(cutoff) {
			fresh = append(fresh, v)
		}
	}
	return fresh
}
