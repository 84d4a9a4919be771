package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yt-sub/internal/models"
)

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	originalDB := DB
	DB = sqlx.NewDb(mockDb, "sqlmock")
	t.Cleanup(func() {
		DB = originalDB
		mockDb.Close()
	})
	return mock
}

const settingsJSON = `{"channels":[{"handle":"@a","description":"A","channel_id":"UCa"}],"notifiers":[{"kind":"log"}]}`

func TestGetAccountIDs(t *testing.T) {
	mock := setupMockDB(t)
	rows := sqlmock.NewRows([]string{"id"}).AddRow("k1").AddRow("k2")
	mock.ExpectQuery(`SELECT id FROM users ORDER BY id`).WillReturnRows(rows)

	ids, err := GetAccountIDs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccount_NotFound(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT id, settings_json, last_run_at FROM users WHERE id = \?`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "settings_json", "last_run_at"}))

	_, err := GetAccount(context.Background(), "missing")

	assert.ErrorIs(t, err, models.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountExists(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE id = \?`).
		WithArgs("k1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := AccountExists(context.Background(), "k1")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAccount(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectExec(`INSERT INTO users \(id, settings_json\)`).
		WithArgs("k1", settingsJSON).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := UpsertAccount(context.Background(), "k1", settingsJSON)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccount_Error(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectExec(`DELETE FROM users WHERE id = \?`).
		WithArgs("k1").
		WillReturnError(errors.New("disk I/O error"))

	err := DeleteAccount(context.Background(), "k1")

	assert.ErrorContains(t, err, "failed to delete account")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastRunAt_UnknownAccount(t *testing.T) {
	mock := setupMockDB(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE users SET last_run_at = \? WHERE id = \?`).
		WithArgs(now, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := UpdateLastRunAt(context.Background(), "missing", now)

	assert.ErrorIs(t, err, models.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore(t *testing.T) {
	mock := setupMockDB(t)
	store := NewAccountStore()
	ctx := context.Background()
	lastRun := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, settings_json, last_run_at FROM users WHERE id = \?`).
		WithArgs("k1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "settings_json", "last_run_at"}).AddRow("k1", settingsJSON, nil))
	mock.ExpectQuery(`SELECT id, settings_json, last_run_at FROM users WHERE id = \?`).
		WithArgs("k1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "settings_json", "last_run_at"}).AddRow("k1", settingsJSON, nil))
	mock.ExpectExec(`UPDATE users SET last_run_at = \? WHERE id = \?`).
		WithArgs(lastRun, "k1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, settings_json, last_run_at FROM users WHERE id = \?`).
		WithArgs("k1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "settings_json", "last_run_at"}).AddRow("k1", settingsJSON, lastRun))

	settings, err := store.Settings(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "UCa", settings.Channels[0].ChannelID)
	assert.Equal(t, models.NotifierLog, settings.Notifiers[0].Kind)

	_, found, err := store.LastRunAt(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetLastRunAt(ctx, "k1", lastRun))

	got, found, err := store.LastRunAt(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, lastRun, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_Save(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("k1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewAccountStore().Save(context.Background(), "k1", models.DefaultSettings())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
