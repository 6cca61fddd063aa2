package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App manages the process lifecycle and module coordination.
type App struct {
	config  *Config
	modules []Module
	router  *chi.Mux
	server  *http.Server
	cancel  context.CancelFunc
	errCh   chan error
}

// NewApp creates a new App instance with the given configuration.
func NewApp(cfg *Config) *App {
	return &App{
		config:  cfg,
		modules: make([]Module, 0),
		errCh:   make(chan error, 1),
	}
}

// LoadModules loads modules from the global registry.
func (a *App) LoadModules() {
	a.modules = Modules()
}

// Start configures and initializes modules, starts their background work and
// begins serving HTTP.
func (a *App) Start() error {
	if err := a.loadModuleConfigs(); err != nil {
		return fmt.Errorf("failed to load module config: %w", err)
	}

	if err := a.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	a.router = a.buildRouter()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.startModules(ctx); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	listener, err := net.Listen("tcp", a.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.HTTPAddr, err)
	}

	a.server = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve http", "error", err)
			a.errCh <- err
		}
	}()

	slog.Info("started app", "addr", listener.Addr().String())

	return nil
}

// Errors reports fatal errors from the HTTP server.
func (a *App) Errors() <-chan error {
	return a.errCh
}

// Handler returns the HTTP handler serving all module routes.
// It is only available after Start.
func (a *App) Handler() http.Handler {
	return a.router
}

// Stop gracefully shuts down the HTTP server and all modules.
func (a *App) Stop() error {
	var err error

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		if shutdownErr := a.server.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("failed to shutdown http server: %w", shutdownErr)
		}
	}

	if a.cancel != nil {
		a.cancel()
	}

	for _, mod := range a.modules {
		if shutdownErr := mod.Shutdown(); shutdownErr != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", shutdownErr)
		}
	}

	return err
}

// loadModuleConfigs calls LoadConfig on every module that has configuration.
func (a *App) loadModuleConfigs() error {
	for _, mod := range a.modules {
		cm, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := cm.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}
	return nil
}

// initModules initializes all loaded modules.
func (a *App) initModules() error {
	deps := ModuleDependencies{
		Config: a.config,
	}

	for _, mod := range a.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(a.modules))
	for i, mod := range a.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// startModules starts every module's background work.
func (a *App) startModules(ctx context.Context) error {
	for _, mod := range a.modules {
		if err := mod.Start(ctx); err != nil {
			return fmt.Errorf("failed to start %s module: %w", mod.Name(), err)
		}
	}
	return nil
}

// buildRouter mounts all module routes behind the shared middleware.
func (a *App) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	for _, mod := range a.modules {
		mod.Routes(r)
	}

	return r
}

// requestLogger logs each request with slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("served request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
