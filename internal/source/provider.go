// Package source fetches manifest and page files for a branch of the
// documentation repository.
package source

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the file does not exist on the branch.
var ErrNotFound = errors.New("source: not found")

// ErrTooLarge is returned when a file exceeds the read limit. Files are
// never returned truncated.
var ErrTooLarge = errors.New("source: file too large")

// Provider is the interface for reading repository files.
type Provider interface {
	// Fetch returns the raw bytes of path (relative to the repository root)
	// on branch. The branch is used verbatim.
	Fetch(ctx context.Context, branch, path string) ([]byte, error)
}

// StatusError is returned for non-success upstream responses other than 404.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source: %s returned status %d", e.URL, e.StatusCode)
}
