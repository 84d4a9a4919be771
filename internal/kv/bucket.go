package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
)

// BucketStore keeps every key as one object of a Cloud Storage bucket.
type BucketStore struct {
	client *storage.Client
	bucket string
	logger *zap.SugaredLogger
}

func NewBucketStore(client *storage.Client, bucket string, logger *zap.SugaredLogger) *BucketStore {
	return &BucketStore{client: client, bucket: bucket, logger: logger}
}

func (b *BucketStore) retryOptions(ctx context.Context, op, key string) []retry.Option {
	return []retry.Option{
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(2 * time.Minute),
		retry.MaxJitter(10 * time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			b.logger.Infow("Retrying storage operation", "op", op, "attempt", n, "key", key, "error", err)
		}),
	}
}

func (b *BucketStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		data     []byte
		notFound bool
	)
	err := retry.Do(
		func() error {
			r, err := b.client.Bucket(b.bucket).Object(key).NewReader(ctx)
			if err != nil {
				if errors.Is(err, storage.ErrObjectNotExist) {
					notFound = true
					return retry.Unrecoverable(err)
				}
				return fmt.Errorf("open storage reader: %w", err)
			}
			defer r.Close()

			data, err = io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read from storage: %w", err)
			}
			return nil
		},
		b.retryOptions(ctx, "get", key)...,
	)
	if notFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load after retries: %w", err)
	}
	return data, nil
}

func (b *BucketStore) Put(ctx context.Context, key string, value []byte) error {
	err := retry.Do(
		func() error {
			w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
			if _, err := w.Write(value); err != nil {
				if closeErr := w.Close(); closeErr != nil {
					b.logger.Warnw("Failed to close writer after error", "error", closeErr)
				}
				return fmt.Errorf("write to storage: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("close storage writer: %w", err)
			}
			return nil
		},
		b.retryOptions(ctx, "put", key)...,
	)
	if err != nil {
		return fmt.Errorf("save after retries: %w", err)
	}
	return nil
}

func (b *BucketStore) Delete(ctx context.Context, key string) error {
	var gone bool
	err := retry.Do(
		func() error {
			if err := b.client.Bucket(b.bucket).Object(key).Delete(ctx); err != nil {
				if errors.Is(err, storage.ErrObjectNotExist) {
					gone = true
					return retry.Unrecoverable(err)
				}
				return fmt.Errorf("delete from storage: %w", err)
			}
			return nil
		},
		b.retryOptions(ctx, "delete", key)...,
	)
	if gone {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete after retries: %w", err)
	}
	return nil
}
