package storage

import (
	"context"
	"time"

	"passport-apply/apperror"
)

// Operation selects the access mode a signed URL grants.
type Operation string

const (
	OperationRead  Operation = "read"
	OperationWrite Operation = "write"
)

// Signed URL validity periods. Application documents stay retrievable for a
// week; renewal documents get short-lived links.
const (
	ApplicationURLTTL = 7 * 24 * time.Hour
	RenewalURLTTL     = time.Hour
)

// Storage is the narrow blob-store boundary the core calls through. Put and
// Delete are idempotent by key so retried calls are safe.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, op Operation, ttl time.Duration) (string, error)
}

// ErrBlobNotFound is returned when a key has no stored blob.
func ErrBlobNotFound(key string) error {
	return apperror.Newf(apperror.KindNotFound, "blob %q not found", key)
}
