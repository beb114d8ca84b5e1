package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/arjunrao/findata/internal/domain"
)

// Store is the persistence contract the pipeline requires.
type Store interface {
	SaveAll(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error)
}

// ErrSourceNotFound indicates a file-path source does not reference an
// existing regular file.
var ErrSourceNotFound = errors.New("source not found")

// ErrDecode indicates a JSON source could not be decoded as a
// transaction array.
var ErrDecode = errors.New("decode source")

// Pipeline drives decoding of an entire source into valid
// transactions and persists the surviving batch.
//
// Row-level CSV failures (short rows, numeric coercion errors) are
// logged and skipped; the only caller-visible failures are
// ErrSourceNotFound, ErrDecode and store write errors.
type Pipeline struct {
	logger *slog.Logger
	store  Store
}

// NewPipeline constructs a Pipeline persisting through the given store.
func NewPipeline(logger *slog.Logger, store Store) *Pipeline {
	return &Pipeline{
		logger: logger,
		store:  store,
	}
}

// LoadCSV ingests a CSV file from a local path.
func (p *Pipeline) LoadCSV(ctx context.Context, path string) ([]domain.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return p.IngestCSV(ctx, file)
}

// IngestCSV ingests CSV content from an already-open stream. The first
// row is always treated as a header and discarded. Surviving records
// keep their source order.
func (p *Pipeline) IngestCSV(ctx context.Context, r io.Reader) ([]domain.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Header row, never parsed.
	if _, err := reader.Read(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	batch := []domain.Transaction{}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.logger.Warn("skipping unreadable csv row", "error", err)
			continue
		}

		tx, err := ParseRow(fields)
		if err != nil {
			p.logger.Warn("skipping malformed csv row",
				"error", err,
				"row", strings.Join(fields, ","),
			)
			continue
		}
		batch = append(batch, tx)
	}

	saved, err := p.store.SaveAll(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("persist csv batch: %w", err)
	}
	return saved, nil
}

// LoadJSON ingests a JSON file from a local path. A missing or
// non-regular file fails with ErrSourceNotFound before any parsing.
func (p *Pipeline) LoadJSON(ctx context.Context, path string) ([]domain.Transaction, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return p.IngestJSON(ctx, file)
}

// IngestJSON ingests a JSON document from an already-open stream. The
// document must be an array of transaction objects; decoding is
// all-or-nothing and a malformed document surfaces as ErrDecode.
// Missing object fields take their zero values.
func (p *Pipeline) IngestJSON(ctx context.Context, r io.Reader) ([]domain.Transaction, error) {
	var batch []domain.Transaction
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if batch == nil {
		batch = []domain.Transaction{}
	}

	saved, err := p.store.SaveAll(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("persist json batch: %w", err)
	}
	return saved, nil
}
