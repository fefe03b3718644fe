package storage

import (
	"context"
	"time"
)

// Service issues time-bounded signed URLs for direct upload/download against
// the object store, keyed by an opaque storage key. Asset metadata lives in
// the database, not here.
type Service interface {
	PresignedPutURL(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
