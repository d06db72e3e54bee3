package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitd/internal/auth"
	"habitd/internal/config"
	"habitd/internal/server"
	"habitd/internal/storage"
	"habitd/internal/storage/mongodb"
	"habitd/internal/storage/postgres"
	"habitd/internal/storage/sqlite"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// ServeCmd runs the HTTP server until SIGINT or SIGTERM.
type ServeCmd struct {
	Addr   string `help:"Override the HTTP listen address." placeholder:"HOST:PORT"`
	Static string `help:"Override the dashboard bundle directory." type:"path"`
}

func (cmd *ServeCmd) Run(app *appContext) error {
	if cmd.Addr != "" {
		app.cfg.Server.Addr = cmd.Addr
	}
	if cmd.Static != "" {
		app.cfg.Server.StaticDir = cmd.Static
	}
	logger := app.logger
	logger.Info("habitd starting", slog.String("driver", app.cfg.Storage.Driver))

	store, err := openStore(app.cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	tokens := auth.NewTokens(app.cfg.Auth.JWTSecret, app.cfg.Auth.TokenTTL)
	authSvc := auth.NewService(store, tokens, logger)
	srv := server.New(store, authSvc, logger, app.cfg.Server.StaticDir)

	httpServer := &http.Server{
		Addr:              app.cfg.Server.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}

// MigrateCmd applies the schema of the configured backend and exits.
type MigrateCmd struct{}

func (cmd *MigrateCmd) Run(app *appContext) error {
	store, err := openStore(app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	app.logger.Info("schema up to date", slog.String("driver", app.cfg.Storage.Driver))
	return nil
}

// openStore connects to the backend named by cfg. Opening a store applies
// its schema.
func openStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.Storage.SQLite.Path, logger)
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.Storage.Postgres.URL, logger)
	case config.DriverMongo:
		return mongodb.Open(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
