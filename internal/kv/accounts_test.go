package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yt-sub/internal/models"
)

func TestAccountStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := NewAccountStore(mem)

	require.NoError(t, store.Save(ctx, "k1", models.DefaultSettings()))
	require.NoError(t, store.Save(ctx, "k2", models.DefaultSettings()))
	require.NoError(t, store.Save(ctx, "k1", models.DefaultSettings()))

	ids, err := store.AccountIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, ids)

	raw, err := mem.Get(ctx, "user_ids")
	require.NoError(t, err)
	assert.Equal(t, "k1,k2", string(raw))

	ok, err := store.Exists(ctx, "k2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountStore_EmptyIDs(t *testing.T) {
	store := NewAccountStore(NewMemoryStore())

	ids, err := store.AccountIDs(context.Background())

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAccountStore_LastRunAt(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := NewAccountStore(mem)

	_, found, err := store.LastRunAt(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)

	marker := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetLastRunAt(ctx, "k1", marker))

	raw, err := mem.Get(ctx, "last_run_at_k1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T12:00:00Z", string(raw))

	got, found, err := store.LastRunAt(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, marker, got)
}

func TestAccountStore_LastRunAtAcceptsOffset(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "last_run_at_k1", []byte("2024-05-01T14:00:00+02:00")))

	got, found, err := NewAccountStore(mem).LastRunAt(ctx, "k1")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), got)
}

func TestAccountStore_DeletePurgesMarker(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := NewAccountStore(mem)

	require.NoError(t, store.Save(ctx, "k1", models.DefaultSettings()))
	require.NoError(t, store.Save(ctx, "k2", models.DefaultSettings()))
	require.NoError(t, store.SetLastRunAt(ctx, "k1", time.Now()))

	require.NoError(t, store.Delete(ctx, "k1"))

	ids, err := store.AccountIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k2"}, ids)

	_, err = store.Settings(ctx, "k1")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)

	_, found, err := store.LastRunAt(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)

	// user_ids and k2 remain
	assert.Equal(t, 2, mem.Len())
}

func TestAccountStore_SettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(NewMemoryStore())
	settings := models.Settings{
		Channels:  []models.Channel{{Handle: "@a", Description: "A", ChannelID: "UCa"}},
		Notifiers: []models.Notifier{models.SlackNotifier("https://hooks.slack.com/x", "#v")},
		Schedule:  []int{8, 20},
	}

	require.NoError(t, store.Save(ctx, "k1", settings))
	got, err := store.Settings(ctx, "k1")

	require.NoError(t, err)
	assert.Equal(t, settings, got)
}
