package presence

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"github.com/sglre6355/sgrpresence/internal/app"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/usecases"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/infrastructure"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/presentation"
)

func init() {
	app.Register(&PresenceModule{})
}

// Compile-time interface checks.
var _ app.ConfigurableModule = (*PresenceModule)(nil)

// PresenceModule keeps a live view of one Discord user's presence and serves it over HTTP.
type PresenceModule struct {
	config   *Config
	store    *infrastructure.MemoryStore
	eventBus *infrastructure.ChannelEventBus
	nats     *nats.Conn
	session  *usecases.Session
	handlers *presentation.Handlers
}

// Name returns the module name.
func (m *PresenceModule) Name() string {
	return "presence"
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *PresenceModule) LoadConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *PresenceModule) Init(_ app.ModuleDependencies) error {
	cfg := m.config

	m.store = infrastructure.NewMemoryStore()
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	if cfg.NATSURL != "" {
		nc, err := infrastructure.ConnectNATS(cfg.NATSURL)
		if err != nil {
			slog.Warn("presence fan-out disabled", "error", err)
		} else {
			m.nats = nc
			infrastructure.NewNATSPublisher(nc, cfg.NATSSubjectPrefix).Register(m.eventBus)
		}
	}

	session, err := usecases.NewSession(
		usecases.SessionOptions{
			UserID:                cfg.DiscordID,
			Badges:                cfg.Badges,
			BannerRefreshInterval: cfg.BannerRefreshInterval,
		},
		usecases.SessionDeps{
			Store:     m.store,
			Snapshots: infrastructure.NewLanyardClient(cfg.LanyardAPIURL, cfg.HTTPTimeout),
			Banners:   infrastructure.NewDiscordLookupClient(cfg.BannerAPIURL, cfg.HTTPTimeout),
			Dialer:    infrastructure.NewLanyardDialer(cfg.LanyardSocketURL, cfg.HTTPTimeout),
			Scheduler: infrastructure.NewTimeScheduler(),
			Publisher: m.eventBus,
		},
	)
	if err != nil {
		return err
	}
	m.session = session
	m.handlers = presentation.NewHandlers(session)

	return nil
}

// Routes registers the presence endpoints.
func (m *PresenceModule) Routes(r chi.Router) {
	m.handlers.Routes(r)
}

// Start begins synchronizing the configured user's presence.
func (m *PresenceModule) Start(ctx context.Context) error {
	m.session.Start(ctx)
	return nil
}

// Shutdown stops synchronization and releases the event bus and NATS connection.
func (m *PresenceModule) Shutdown() error {
	if m.session != nil {
		m.session.Stop()
	}
	if m.eventBus != nil {
		m.eventBus.Close()
	}
	if m.nats != nil {
		if err := m.nats.Drain(); err != nil {
			return err
		}
	}
	return nil
}
