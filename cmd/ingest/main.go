package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/arjunrao/findata/internal/config"
	"github.com/arjunrao/findata/internal/domain"
	"github.com/arjunrao/findata/internal/ingest"
	"github.com/arjunrao/findata/internal/logging"
	"github.com/arjunrao/findata/internal/store"
)

func main() {
	var (
		source = flag.String("source", "", "Path to the CSV or JSON transaction file to ingest")
		format = flag.String("format", "", "Source format: csv or json (inferred from the file extension when empty)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	if *source == "" {
		logger.Error("-source is required")
		os.Exit(1)
	}

	resolvedFormat, err := resolveFormat(*source, *format)
	if err != nil {
		logger.Error("format resolution failed", "error", err)
		os.Exit(1)
	}

	if cfg.Store.URI == "" {
		logger.Error("STORE_URI is required for ingestion")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backend, err := store.NewNeo4jStore(ctx, store.Options{
		URI:            cfg.Store.URI,
		Database:       cfg.Store.Database,
		Username:       cfg.Store.Username,
		Password:       cfg.Store.Password,
		MaxConnections: cfg.Store.MaxConnections,
	})
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

	start := time.Now()
	logger.Info("ingesting transactions", "source", *source, "format", resolvedFormat)

	var batch []domain.Transaction
	switch resolvedFormat {
	case "csv":
		batch, err = pipeline.LoadCSV(ctx, *source)
	case "json":
		batch, err = pipeline.LoadJSON(ctx, *source)
	}
	if err != nil {
		logger.Error("ingestion failed", "error", err, "source", *source)
		os.Exit(1)
	}

	logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"transactions", len(batch),
	)
}

func resolveFormat(source, format string) (string, error) {
	switch strings.ToLower(format) {
	case "csv", "json":
		return strings.ToLower(format), nil
	case "":
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv":
		return "csv", nil
	case ".json":
		return "json", nil
	}
	return "", fmt.Errorf("cannot infer format from %q, pass -format", source)
}
