package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore keeps receipt images.
type ObjectStore interface {
	// Put stores body under key and returns the object URL.
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	// Get opens the object; callers close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}
