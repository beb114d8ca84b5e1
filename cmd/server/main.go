package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arjunrao/findata/internal/analytics"
	"github.com/arjunrao/findata/internal/config"
	"github.com/arjunrao/findata/internal/dashboard"
	"github.com/arjunrao/findata/internal/ingest"
	"github.com/arjunrao/findata/internal/logging"
	"github.com/arjunrao/findata/internal/server"
	"github.com/arjunrao/findata/internal/store"
)

// dataStore is the combined backend contract the server wires against.
type dataStore interface {
	store.TransactionStore
	store.ConfigStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	backend, err := buildStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	pipeline := ingest.NewPipeline(logger, backend)
	engine := analytics.NewEngine(backend)
	dash := dashboard.NewService(logger, backend, backend, engine)

	if err := dash.EnsureDefaults(ctx); err != nil {
		logger.Error("failed to seed dashboard defaults", "error", err)
		os.Exit(1)
	}

	apiHandlers := server.NewAPIHandlers(logger, pipeline, engine, dash)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.StoreHealthService{Store: backend},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (dataStore, error) {
	if cfg.Store.URI == "" {
		logger.Warn("STORE_URI not set, using in-memory store; data will not survive restarts")
		return store.NewMemoryStore(), nil
	}

	opts := store.Options{
		URI:            cfg.Store.URI,
		Database:       cfg.Store.Database,
		Username:       cfg.Store.Username,
		Password:       cfg.Store.Password,
		MaxConnections: cfg.Store.MaxConnections,
	}
	return store.NewNeo4jStore(ctx, opts)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
