package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
)

// Store persists uploaded files on local disk. Stored names are prefixed with
// the upload's unix-millisecond timestamp, which keeps collisions out of
// practical reach without a lookup. Paths returned by Save are relative
// ("<dir-base>/<name>") and are served verbatim under the static route.
type Store struct {
	dir      string
	prefix   string
	maxBytes int64
	now      func() time.Time
}

// NewStore ensures the target directory exists and returns a disk store.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("asset dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating asset dir %q: %w", dir, err)
	}
	return &Store{
		dir:      dir,
		prefix:   filepath.Base(dir),
		maxBytes: maxBytes,
		now:      time.Now,
	}, nil
}

// Dir returns the directory files are written into.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the stream to disk and returns the relative path to store on
// the owning record.
func (s *Store) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := sanitizeFilename(originalName)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	stored := fmt.Sprintf("%d-%s", s.now().UnixMilli(), name)

	dest, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return "", fmt.Errorf("creating asset file: %w", err)
	}
	defer dest.Close()

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	written, err := io.Copy(dest, src)
	if err != nil {
		_ = os.Remove(dest.Name())
		return "", fmt.Errorf("writing asset file: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(dest.Name())
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file exceeds upload size limit")
	}

	return path.Join(s.prefix, stored), nil
}

// Remove deletes the file behind a stored relative path. A missing file is
// not an error.
func (s *Store) Remove(relPath string) error {
	name, ok := s.localName(relPath)
	if !ok {
		return fmt.Errorf("path %q is outside the asset dir", relPath)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// localName maps a stored relative path back to a bare file name inside the
// asset dir, rejecting traversal attempts.
func (s *Store) localName(relPath string) (string, bool) {
	cleaned := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, s.prefix+"/")
	if cleaned == "" || cleaned == "." || strings.Contains(cleaned, "/") || strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	return cleaned, true
}

func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "." || base == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
