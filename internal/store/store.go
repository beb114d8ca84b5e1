package store

import (
	"context"
	"errors"

	"github.com/arjunrao/findata/internal/domain"
)

// TransactionStore is the persistence contract for ingested
// transactions. SaveAll persists the whole batch or fails as a unit;
// callers see no partial-success reporting. FindAll returns the full
// unordered snapshot.
type TransactionStore interface {
	SaveAll(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error)
	FindAll(ctx context.Context) ([]domain.Transaction, error)
	FindByStatus(ctx context.Context, status string) ([]domain.Transaction, error)
	FindByType(ctx context.Context, typ string) ([]domain.Transaction, error)
}

// ConfigStore persists dashboard panel configurations.
type ConfigStore interface {
	SaveConfig(ctx context.Context, cfg domain.DashboardConfig) (domain.DashboardConfig, error)
	FindConfigs(ctx context.Context) ([]domain.DashboardConfig, error)
	FindEnabledConfigs(ctx context.Context) ([]domain.DashboardConfig, error)
	FindConfigByID(ctx context.Context, id string) (domain.DashboardConfig, error)
	DeleteConfig(ctx context.Context, id string) error
	CountConfigs(ctx context.Context) (int64, error)
}

// Options configures a store backend implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the store URI is not provided.
var ErrMissingURI = errors.New("store URI is required")

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")
