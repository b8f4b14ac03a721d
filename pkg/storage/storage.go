// Package storage persists uploaded media files.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownRef is returned when a reference was not produced by the store.
var ErrUnknownRef = errors.New("storage: reference not owned by this store")

// Storage saves and deletes uploaded files. Save returns a public reference
// (a URL or URL path) that Delete accepts back.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// objectKey builds a unique key under post/ keeping the original extension
func objectKey(name string) string {
	return "post/" + uuid.NewString() + strings.ToLower(path.Ext(name))
}
