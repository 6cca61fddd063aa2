package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sglre6355/sgrpresence/internal/app"
	_ "github.com/sglre6355/sgrpresence/internal/modules/health"
	_ "github.com/sglre6355/sgrpresence/internal/modules/presence"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/sgrpresence
var version = "dev"

func main() {
	// A .env file is optional; the environment always wins.
	_ = godotenv.Load()

	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("starting sgrpresence", "version", version)

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	a := app.NewApp(cfg)
	a.LoadModules()

	if err := a.Start(); err != nil {
		slog.Error("failed to start app", "error", err)
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-stop:
		slog.Info("received termination signal, shutting down")
	case err := <-a.Errors():
		slog.Error("stopped serving, shutting down", "error", err)
		exitCode = 1
	}

	if err := a.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed shutdown")
	os.Exit(exitCode)
}
