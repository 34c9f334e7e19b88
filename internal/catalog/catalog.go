// Package catalog turns the catalog group of the navigation manifest into
// catalog entries.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starford/cookhub/internal/models"
	"github.com/starford/cookhub/internal/parser"
)

// ReservedSlug is never listed in the catalog.
const ReservedSlug = "index"

// ErrGroupNotFound is returned when the manifest has no catalog group.
var ErrGroupNotFound = errors.New("catalog: group not found")

var (
	errEmptyPath   = errors.New("missing path")
	errNoSeparator = errors.New("path has no '/'")
	errNoExtension = errors.New("path has no extension")
	errEmptySlug   = errors.New("empty slug")
	errNestedGroup = errors.New("nested group")
)

// EntryError reports a catalog item whose slug could not be derived.
type EntryError struct {
	ID    int
	Label string
	Path  string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("catalog: entry %d (%q, %q): %v", e.ID, e.Label, e.Path, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Slug returns the last path segment without its extension:
// "docs/hub/foo/bar.md" → "bar".
func Slug(path string) (string, error) {
	if path == "" {
		return "", errEmptyPath
	}
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", errNoSeparator
	}
	base := path[i+1:]
	dot := strings.LastIndex(base, ".")
	if dot < 0 {
		return "", errNoExtension
	}
	if dot == 0 {
		return "", errEmptySlug
	}
	return base[:dot], nil
}

// Build lists the leaves of the group named group in manifest order. IDs are
// positions inside the group and are kept as-is after the reserved slug is
// filtered out. Items whose slug cannot be derived are reported in skipped
// and left out; the rest of the catalog is still returned.
func Build(nav *parser.Navigation, group string) (entries []models.CatalogEntry, skipped []*EntryError, err error) {
	g, ok := nav.Group(group)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrGroupNotFound, group)
	}

	entries = make([]models.CatalogEntry, 0, len(g.Children))
	for id, item := range g.Children {
		if item.Group {
			skipped = append(skipped, &EntryError{ID: id, Label: item.Label, Err: errNestedGroup})
			continue
		}
		slug, err := Slug(item.Path)
		if err != nil {
			skipped = append(skipped, &EntryError{ID: id, Label: item.Label, Path: item.Path, Err: err})
			continue
		}
		if slug == ReservedSlug {
			continue
		}
		entries = append(entries, models.CatalogEntry{
			ID:   id,
			Name: item.Label,
			Path: item.Path,
			Slug: slug,
		})
	}
	return entries, skipped, nil
}
