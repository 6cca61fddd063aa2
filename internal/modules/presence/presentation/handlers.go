package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/usecases"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// PresenceService is the read side of a presence session.
type PresenceService interface {
	View() usecases.View
	Snapshot() (domain.Snapshot, error)
	Playback() domain.PlaybackView
	ConnectionState() domain.ConnectionState
	Refresh(ctx context.Context) error
}

var _ PresenceService = (*usecases.Session)(nil)

// Handlers serves the presence view over HTTP.
type Handlers struct {
	service PresenceService
}

// NewHandlers creates a new Handlers.
func NewHandlers(service PresenceService) *Handlers {
	return &Handlers{service: service}
}

// Routes registers the presence endpoints on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/v1/presence", func(r chi.Router) {
		r.Get("/", h.HandleGetPresence)
		r.Get("/snapshot", h.HandleGetSnapshot)
		r.Get("/playback", h.HandleGetPlayback)
		r.Get("/connection", h.HandleGetConnection)
		r.Post("/refresh", h.HandleRefresh)
	})
}

// HandleGetPresence returns the current snapshot with its loading and error state.
func (h *Handlers) HandleGetPresence(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newPresenceResponse(h.service.View()))
}

// HandleGetSnapshot returns the bare snapshot, or 404 before the first successful fetch.
func (h *Handlers) HandleGetSnapshot(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := h.service.Snapshot()
	if errors.Is(err, domain.ErrNoSnapshot) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotResponse(snapshot))
}

// HandleGetPlayback returns the playback projection at the time of the request.
func (h *Handlers) HandleGetPlayback(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Playback())
}

// HandleGetConnection returns the push channel state.
func (h *Handlers) HandleGetConnection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newConnectionResponse(h.service.ConnectionState()))
}

// HandleRefresh re-runs the snapshot fetch.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		slog.Warn("failed to refresh presence",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUpstream) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newPresenceResponse(h.service.View()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
