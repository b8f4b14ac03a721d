package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps files under a directory served at a URL prefix
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates the media root if needed
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}, nil
}

// Root returns the directory files are written to
func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes r to a new file and returns its URL path
func (s *LocalStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(name)
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close media file: %w", err)
	}
	return s.baseURL + key, nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.baseURL)
	if !ok || key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("delete %q: %w", ref, ErrUnknownRef)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}
