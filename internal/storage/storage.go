// Package storage keeps uploaded font files, either on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("storage: object not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Storage stores font files by key.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh storage key with the given extension.
func NewKey(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return uuid.NewString() + "." + ext
}

// ValidKey rejects keys that could escape a directory or bucket prefix.
func ValidKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return ErrInvalidKey
	}
	return nil
}
