package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"road-trip-planner/internal/app"
	"road-trip-planner/internal/config"
	"road-trip-planner/internal/handlers"
	"road-trip-planner/internal/logging"
	"road-trip-planner/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flags.String("config", "", "path to config.yaml")
	flags.Int("port", 8080, "HTTP listen port")
	flags.String("db", "", "SQLite database path (default ~/.road-trip-planner/data.db)")
	flags.String("cache", "sqlite", "place cache backend: sqlite, valkey or none")
	flags.String("router", "osrm", "routing provider: osrm or google")
	flags.Int("workers", 1, "concurrent place searches per trip")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	srv := server.New(server.Config{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, &handlers.Handler{
		DB:       a.Store,
		Geocoder: a.Geocoder,
		Planner:  a.Planner,
	})

	if _, err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-ctx.Done()
	slog.Info("received shutdown signal, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
