// Package blob stores raw uploaded file bytes behind one interface. Backends
// issue opaque locators that only they can resolve.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by every backend when a locator resolves to nothing.
var ErrNotFound = errors.New("blob not found")

// Meta describes the bytes being stored.
type Meta struct {
	OwnerID     string
	ContentType string
	Size        int64
}

// Store persists blobs. Put returns only after the bytes are durable.
type Store interface {
	Put(ctx context.Context, r io.Reader, suggestedName string, meta Meta) (locator string, err error)
	Get(ctx context.Context, locator string) (io.ReadCloser, error)
	Delete(ctx context.Context, locator string) error
}
