package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sglre6355/sgrpresence/internal/app"
	"github.com/sglre6355/sgrpresence/internal/modules/health/presentation"
)

func init() {
	app.Register(&HealthModule{})
}

// HealthModule provides the liveness endpoint.
type HealthModule struct {
	pingHandler *presentation.PingHandler
}

// Name returns the module name.
func (m *HealthModule) Name() string {
	return "health"
}

// Init initializes the module.
func (m *HealthModule) Init(_ app.ModuleDependencies) error {
	m.pingHandler = presentation.NewPingHandler(time.Now())
	return nil
}

// Routes registers GET /ping.
func (m *HealthModule) Routes(r chi.Router) {
	r.Method(http.MethodGet, "/ping", m.pingHandler)
}

// Start does nothing; the module has no background work.
func (m *HealthModule) Start(_ context.Context) error {
	return nil
}

// Shutdown cleans up module resources.
func (m *HealthModule) Shutdown() error {
	return nil
}
