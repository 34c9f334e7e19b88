package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/cookhub/internal/apperr"
)

// Fixed response bodies. Upstream and parse errors are never echoed.
const (
	bodyNotFound   = "Not Found."
	bodyBadGateway = "Bad Gateway."
	bodyInternal   = "Internal Server Error."
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// writeError maps a service error to a status and a fixed body, and logs the
// detail.
func writeError(w http.ResponseWriter, op string, err error, attrs ...slog.Attr) {
	status, body := http.StatusInternalServerError, bodyInternal
	switch {
	case errors.Is(err, apperr.ErrContentNotFound):
		status, body = http.StatusNotFound, bodyNotFound
	case errors.Is(err, apperr.ErrManifestUnavailable),
		errors.Is(err, apperr.ErrManifestMalformed),
		errors.Is(err, apperr.ErrContentUnavailable):
		status, body = http.StatusBadGateway, bodyBadGateway
	}

	args := make([]any, 0, len(attrs)+2)
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.Int("status", status), slog.String("error", err.Error()))
	if status == http.StatusNotFound {
		slog.Info(op+" not found", args...)
	} else {
		slog.Error(op+" failed", args...)
	}

	writeText(w, status, body)
}

// NotFound answers every unknown route and method.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusNotFound, bodyNotFound)
}
