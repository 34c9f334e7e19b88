// Package testutil provides a fake raw-content upstream for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Repo is the repository path the fake upstream serves under.
const Repo = "acme/docs"

// Upstream is a fake raw-content host serving /<Repo>/<branch>/<path>.
type Upstream struct {
	*httptest.Server

	mu     sync.Mutex
	files  map[string]string
	status map[string]int
	hits   map[string]int
}

// NewUpstream starts a fake upstream. files is keyed by "<branch>/<path>".
func NewUpstream(t *testing.T, files map[string]string) *Upstream {
	t.Helper()
	u := &Upstream{
		files:  files,
		status: make(map[string]int),
		hits:   make(map[string]int),
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/"+Repo+"/")

	u.mu.Lock()
	u.hits[key]++
	status, forced := u.status[key]
	body, ok := u.files[key]
	u.mu.Unlock()

	if forced {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

// FailWith makes the upstream answer key ("<branch>/<path>") with status.
func (u *Upstream) FailWith(key string, status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status[key] = status
}

// Hits returns how many times key was requested.
func (u *Upstream) Hits(key string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[key]
}
