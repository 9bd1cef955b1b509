// Package assets abstracts where static files live. The server reads
// through a Store, so the same serving and hardening code fronts a local
// directory in development and an object store in production.
package assets

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a named asset doesn't exist.
var ErrNotFound = errors.New("assets: not found")

// File is one opened asset. The caller owns Reader and must close it.
type File struct {
	// Name is the store-relative path the file was opened under.
	Name string

	// ContentType is the detected media type, empty when unknown.
	ContentType string

	// Size is the content length in bytes.
	Size int64

	// ModTime is the last modification time, zero when the backend does
	// not track one.
	ModTime time.Time

	// Reader streams the content.
	Reader io.ReadCloser
}

// Store is a read-only asset backend.
//
// Open takes a slash-separated relative path. Implementations may assume
// the path has already been sanitized; they must still return ErrNotFound
// rather than leaking backend errors for missing names.
type Store interface {
	Open(ctx context.Context, name string) (*File, error)
}
