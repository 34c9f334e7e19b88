package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cookhub/internal/hubservice"
)

// NewRouter creates a chi router with the item routes, to be mounted at /api.
// events receives one access event per item request and may be nil.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *hubservice.Service, events EventRecorder, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(NotFound)

	r.Get("/{branch}/items", h.ListItems)
	r.Get("/{branch}/items/{slug}/md", h.GetMarkdown)
	r.Get("/{branch}/items/{slug}/py", h.GetCode)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
