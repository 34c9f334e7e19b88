// Package hubservice resolves catalog listings and cookbook content for a
// branch of the documentation repository.
package hubservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/cookhub/internal/apperr"
	"github.com/starford/cookhub/internal/catalog"
	"github.com/starford/cookhub/internal/models"
	"github.com/starford/cookhub/internal/parser"
	"github.com/starford/cookhub/internal/source"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultManifestPath = "mkdocs.yml"
	DefaultContentDir   = "docs/hub"
	DefaultCatalogGroup = "Hub"
)

// Options locates the manifest, the cookbook pages and the catalog group.
type Options struct {
	ManifestPath string
	ContentDir   string
	CatalogGroup string
}

// Service coordinates source fetches, manifest parsing and extraction.
type Service struct {
	src    source.Provider
	opts   Options
	logger *slog.Logger
}

// NewService creates a new hub service.
func NewService(src source.Provider, opts Options, logger *slog.Logger) *Service {
	if opts.ManifestPath == "" {
		opts.ManifestPath = DefaultManifestPath
	}
	if opts.ContentDir == "" {
		opts.ContentDir = DefaultContentDir
	}
	if opts.CatalogGroup == "" {
		opts.CatalogGroup = DefaultCatalogGroup
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, opts: opts, logger: logger}
}

// Options returns the effective options, defaults applied.
func (s *Service) Options() Options {
	return s.opts
}

// FetchManifest retrieves and parses the navigation manifest of branch.
func (s *Service) FetchManifest(ctx context.Context, branch string) (*parser.Navigation, error) {
	data, err := s.src.Fetch(ctx, branch, s.opts.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: branch %q: %w", apperr.ErrManifestUnavailable, branch, err)
	}
	nav, err := parser.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w: branch %q: %w", apperr.ErrManifestMalformed, branch, err)
	}
	return nav, nil
}

// Catalog lists the cookbooks of branch. Entries whose slug cannot be derived
// are logged and left out.
func (s *Service) Catalog(ctx context.Context, branch string) ([]models.CatalogEntry, error) {
	nav, err := s.FetchManifest(ctx, branch)
	if err != nil {
		return nil, err
	}
	entries, skipped, err := catalog.Build(nav, s.opts.CatalogGroup)
	if err != nil {
		return nil, fmt.Errorf("%w: branch %q: %w", apperr.ErrManifestMalformed, branch, err)
	}
	for _, e := range skipped {
		s.logger.Warn("catalog entry skipped",
			slog.String("branch", branch),
			slog.Int("id", e.ID),
			slog.String("name", e.Label),
			slog.String("path", e.Path),
			slog.String("error", e.Err.Error()))
	}
	return entries, nil
}

// Markdown returns the raw page of slug on branch.
func (s *Service) Markdown(ctx context.Context, branch, slug string) (string, error) {
	p := strings.TrimSuffix(s.opts.ContentDir, "/") + "/" + slug + ".md"
	data, err := s.src.Fetch(ctx, branch, p)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return "", fmt.Errorf("%w: %s@%s", apperr.ErrContentNotFound, p, branch)
		}
		return "", fmt.Errorf("%w: %s@%s: %w", apperr.ErrContentUnavailable, p, branch, err)
	}
	return string(data), nil
}

// Code returns the python code of slug on branch, or parser.NoCodeFound.
func (s *Service) Code(ctx context.Context, branch, slug string) (string, error) {
	body, err := s.Markdown(ctx, branch, slug)
	if err != nil {
		return "", err
	}
	return parser.ExtractPython(body), nil
}
