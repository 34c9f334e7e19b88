// Package api implements the hub's HTTP surface using chi.
package api

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/starford/cookhub/internal/hubservice"
	"github.com/starford/cookhub/internal/models"
)

// EventRecorder accepts access events without blocking.
type EventRecorder interface {
	Enqueue(ev models.AccessEvent) bool
}

// Handler holds API route handlers.
type Handler struct {
	svc    *hubservice.Service
	events EventRecorder
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(svc *hubservice.Service, events EventRecorder) *Handler {
	return &Handler{svc: svc, events: events}
}

// ListItems handles GET /api/{branch}/items.
//
//	@Summary		List the cookbooks of a branch
//	@Tags			items
//	@Produce		json
//	@Param			branch	path		string	true	"Branch name"
//	@Success		200		{array}		CatalogEntry
//	@Failure		502		{string}	string
//	@Router			/{branch}/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	branch := chi.URLParam(r, "branch")
	h.track(r, models.EventCatalog, branch, models.NoSlug)

	entries, err := h.svc.Catalog(r.Context(), branch)
	if err != nil {
		writeError(w, "list items", err, slog.String("branch", branch))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetMarkdown handles GET /api/{branch}/items/{slug}/md.
//
//	@Summary		Raw markdown of a cookbook
//	@Tags			items
//	@Produce		plain
//	@Param			branch	path		string	true	"Branch name"
//	@Param			slug	path		string	true	"Cookbook slug"
//	@Success		200		{string}	string
//	@Failure		404		{string}	string
//	@Router			/{branch}/items/{slug}/md [get]
func (h *Handler) GetMarkdown(w http.ResponseWriter, r *http.Request) {
	branch, slug := chi.URLParam(r, "branch"), chi.URLParam(r, "slug")
	h.track(r, models.EventMarkdown, branch, slug)

	body, err := h.svc.Markdown(r.Context(), branch, slug)
	if err != nil {
		writeError(w, "get markdown", err, slog.String("branch", branch), slog.String("slug", slug))
		return
	}
	writeText(w, http.StatusOK, body)
}

// GetCode handles GET /api/{branch}/items/{slug}/py.
//
//	@Summary		Python code blocks of a cookbook
//	@Description	Concatenated python blocks, or "No code found." when there are none.
//	@Tags			items
//	@Produce		plain
//	@Param			branch	path		string	true	"Branch name"
//	@Param			slug	path		string	true	"Cookbook slug"
//	@Success		200		{string}	string
//	@Failure		404		{string}	string
//	@Router			/{branch}/items/{slug}/py [get]
func (h *Handler) GetCode(w http.ResponseWriter, r *http.Request) {
	branch, slug := chi.URLParam(r, "branch"), chi.URLParam(r, "slug")
	h.track(r, models.EventCode, branch, slug)

	code, err := h.svc.Code(r.Context(), branch, slug)
	if err != nil {
		writeError(w, "get code", err, slog.String("branch", branch), slog.String("slug", slug))
		return
	}
	writeText(w, http.StatusOK, code)
}

// track hands an access event to the recorder. It never fails the request.
func (h *Handler) track(r *http.Request, kind models.EventKind, branch, slug string) {
	if h.events == nil {
		return
	}
	h.events.Enqueue(models.AccessEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Slug:      slug,
		Branch:    branch,
		UserAgent: r.UserAgent(),
		ClientIP:  clientIP(r),
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

// clientIP returns the host part of RemoteAddr, which chi's RealIP
// middleware has already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
