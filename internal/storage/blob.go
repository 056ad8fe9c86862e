// Package storage keeps rendered receipt documents.
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Read when no blob is stored under the key.
var ErrNotExist = errors.New("storage: blob does not exist")

// BlobStore is implemented by FileStore and S3Store.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}
