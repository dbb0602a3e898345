// Package storage keeps user avatar images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxBytes is the default avatar size limit.
const DefaultMaxBytes int64 = 5 << 20

var (
	// ErrUnsupportedType is returned for files whose extension is not an allowed image type.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("image too large")
)

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// AllowedExtensions lists accepted avatar extensions for error messages.
func AllowedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// AvatarStore saves avatars as <uuid><ext> inside Dir.
type AvatarStore struct {
	Dir      string
	MaxBytes int64
}

// NewAvatarStore creates dir if needed.
func NewAvatarStore(dir string, maxBytes int64) (*AvatarStore, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &AvatarStore{Dir: dir, MaxBytes: maxBytes}, nil
}

// Save copies r into a new file named after a random UUID and returns the
// stored file name.  Partial files are removed on failure.
func (s *AvatarStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create avatar: %w", err)
	}
	// Read one byte past the limit to detect oversized uploads.
	n, err := io.Copy(f, io.LimitReader(r, s.MaxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("write avatar: %w", err)
	case n > s.MaxBytes:
		_ = os.Remove(path)
		return "", ErrTooLarge
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("close avatar: %w", closeErr)
	}
	return name, nil
}

// Remove deletes a stored avatar.  Names that are empty, contain a path, or
// no longer exist are ignored.
func (s *AvatarStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
