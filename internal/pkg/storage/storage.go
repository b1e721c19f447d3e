package storage

import (
	"context"
	"io"
)

// Storage is the minimal interface for the object-storage backends that
// hold exported cover images. Save a file, delete a file, get its URL.
type Storage interface {
	// Put stores an object at the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes an object by key. Returns nil if the object doesn't exist.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for an object given its key.
	URL(key string) string
}
