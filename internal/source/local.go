package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local implements Provider over checked-out branches on disk, laid out as
// <root>/<branch>/<path>.
type Local struct {
	root string // absolute path
}

// NewLocal creates a Local provider rooted at the given directory.
// The directory must already exist.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("source: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("source: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source: root is not a directory: %s", abs)
	}
	return &Local{root: abs}, nil
}

// safePath resolves branch and path against the root and rejects any result
// that escapes it.
func (l *Local) safePath(branch, rel string) (string, error) {
	if branch == "" || rel == "" {
		return "", fmt.Errorf("source: branch and path are required")
	}
	joined := filepath.Join(l.root, filepath.FromSlash(branch), filepath.FromSlash(rel))
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("source: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, l.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("source: path escapes root: %s/%s", branch, rel)
	}
	return abs, nil
}

// Fetch implements Provider.
func (l *Local) Fetch(_ context.Context, branch, path string) ([]byte, error) {
	abs, err := l.safePath(branch, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, branch, path)
		}
		return nil, fmt.Errorf("source: read %s/%s: %w", branch, path, err)
	}
	return data, nil
}
