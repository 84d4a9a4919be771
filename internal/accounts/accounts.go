// Package accounts selects the account backend of the service binaries.
package accounts

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"yt-sub/internal/config"
	"yt-sub/internal/db"
	"yt-sub/internal/kv"
	"yt-sub/internal/models"
	"yt-sub/internal/poll"
)

// Repository is the full account capability used by the HTTP API and the
// worker. Both db.AccountStore and kv.AccountStore implement it.
type Repository interface {
	poll.Store
	AccountIDs(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, id string, settings models.Settings) error
	Delete(ctx context.Context, id string) error
}

var (
	_ Repository = (*db.AccountStore)(nil)
	_ Repository = (*kv.AccountStore)(nil)
)

// Open returns the bucket backed store when STORAGE_BUCKET is set and the
// SQL store otherwise. The returned func releases the backend.
func Open(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (Repository, func() error, error) {
	if cfg.StorageBucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		logger.Infow("Using bucket account store", "bucket", cfg.StorageBucket)
		store := kv.NewAccountStore(kv.NewBucketStore(client, cfg.StorageBucket, logger.Named("kv")))
		return store, client.Close, nil
	}

	if err := db.InitDB(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}
	return db.NewAccountStore(), db.Close, nil
}
