package presentation

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sglre6355/sgrpresence/internal/modules/health/application"
)

// PingHandler handles GET /ping.
type PingHandler struct {
	interactor *application.PingInteractor
}

// NewPingHandler creates a new PingHandler.
func NewPingHandler(startedAt time.Time) *PingHandler {
	return &PingHandler{
		interactor: application.NewPingInteractor(startedAt),
	}
}

type pingResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	UptimeMs  int64     `json:"uptime_ms"`
}

// ServeHTTP writes the ping result as JSON.
func (h *PingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	result := h.interactor.Execute()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	err := json.NewEncoder(w).Encode(pingResponse{
		Message:   result.Message,
		Timestamp: result.Timestamp,
		UptimeMs:  result.Uptime.Milliseconds(),
	})
	if err != nil {
		slog.Error("failed to encode ping response", "error", err)
	}
}
