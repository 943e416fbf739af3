// Package blobstore keeps opaque objects (database backups, the release
// package) in S3-compatible object storage.
package blobstore

import (
	"context"
	"io"
	"time"
)

// ObjectInfo is the metadata returned with an object body.
type ObjectInfo struct {
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Store is an object store. Get returns common.ErrorNotFound for missing keys.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
