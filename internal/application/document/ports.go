package document

import (
	"context"
	"io"
	"time"
)

// ObjectStorage stores document contents. Keys are produced by
// document.StorageKey and are already scoped by firm.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// PresignDownload returns a time-limited URL serving the object as
	// an attachment named filename
	PresignDownload(ctx context.Context, key, filename string, ttl time.Duration) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
