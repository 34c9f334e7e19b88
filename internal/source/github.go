package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://raw.githubusercontent.com"
	maxBodyBytes   = 8 << 20 // 8 MB
)

// GitHub reads files from a raw-content host laid out as
// <baseURL>/<repo>/<branch>/<path>.
type GitHub struct {
	baseURL    string
	repo       string
	httpClient *http.Client
}

// NewGitHub creates a raw-content provider. An empty baseURL selects
// raw.githubusercontent.com.
func NewGitHub(baseURL, repo string, timeout time.Duration) *GitHub {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GitHub{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		repo:       strings.Trim(repo, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL returns the address Fetch requests for branch and path.
func (g *GitHub) URL(branch, path string) string {
	return g.baseURL + "/" + g.repo + "/" + branch + "/" + strings.TrimPrefix(path, "/")
}

// Fetch implements Provider.
func (g *GitHub) Fetch(ctx context.Context, branch, path string) ([]byte, error) {
	url := g.URL(branch, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", url, err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, maxBodyBytes)
	}
	return data, nil
}
