package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"yt-sub/internal/models"
)

func TestFilterFresh(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	videos := []models.Video{
		{Title: "before", PublishedAt: cutoff.Add(-time.Second)},
		{Title: "exact", PublishedAt: cutoff},
		{Title: "after", PublishedAt: cutoff.Add(time.Second)},
	}

	fresh := FilterFresh(videos, cutoff)

	assert.Len(t, fresh, 1)
	assert.Equal(t, "after", fresh[0].Title)
}

func TestFilterFresh_Idempotent(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	videos := []models.Video{
		{Title: "a", PublishedAt: cutoff.Add(time.Hour)},
		{Title: "b", PublishedAt: cutoff.Add(-time.Hour)},
		{Title: "c", PublishedAt: cutoff.Add(2 * time.Hour)},
	}

	once := FilterFresh(videos, cutoff)
	twice := FilterFresh(once, cutoff)

	assert.Equal(t, once, twice)
	assert.Equal(t, "a", once[0].Title)
	assert.Equal(t, "c", once[1].Title)
}

func TestFilterFresh_Empty(t *testing.T) {
	assert.Empty(t, FilterFresh(nil, time.Now()))
}
