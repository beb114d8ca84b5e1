package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/arjunrao/findata/internal/domain"
)

// MemoryStore is an in-memory implementation of TransactionStore and
// ConfigStore. It backs unit tests and local runs without a database.
type MemoryStore struct {
	mu           sync.Mutex
	transactions []domain.Transaction
	configs      map[string]domain.DashboardConfig
	saveErr      error
	readErr      error
}

// NewMemoryStore instantiates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[string]domain.DashboardConfig),
	}
}

// WithSaveError forces subsequent write operations to fail with err.
func (m *MemoryStore) WithSaveError(err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
	return m
}

// WithReadError forces subsequent read operations to fail with err.
func (m *MemoryStore) WithReadError(err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
	return m
}

// SaveAll appends the batch, assigning IDs to records that lack one.
func (m *MemoryStore) SaveAll(_ context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return nil, m.saveErr
	}

	saved := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		saved[i] = tx
	}
	m.transactions = append(m.transactions, saved...)
	return saved, nil
}

// FindAll returns a copy of the stored transaction snapshot.
func (m *MemoryStore) FindAll(context.Context) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]domain.Transaction(nil), m.transactions...), nil
}

// FindByStatus returns transactions with an exact status match.
func (m *MemoryStore) FindByStatus(_ context.Context, status string) ([]domain.Transaction, error) {
	return m.filter(func(tx domain.Transaction) bool { return tx.Status == status })
}

// FindByType returns transactions with an exact type match.
func (m *MemoryStore) FindByType(_ context.Context, typ string) ([]domain.Transaction, error) {
	return m.filter(func(tx domain.Transaction) bool { return tx.Type == typ })
}

func (m *MemoryStore) filter(keep func(domain.Transaction) bool) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, m.readErr
	}

	matched := make([]domain.Transaction, 0)
	for _, tx := range m.transactions {
		if keep(tx) {
			matched = append(matched, tx)
		}
	}
	return matched, nil
}

// SaveConfig upserts a dashboard config, assigning an ID when absent.
func (m *MemoryStore) SaveConfig(_ context.Context, cfg domain.DashboardConfig) (domain.DashboardConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return domain.DashboardConfig{}, m.saveErr
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	m.configs[cfg.ID] = cfg
	return cfg, nil
}

// FindConfigs returns all configs ordered by position.
func (m *MemoryStore) FindConfigs(context.Context) ([]domain.DashboardConfig, error) {
	return m.filterConfigs(func(domain.DashboardConfig) bool { return true })
}

// FindEnabledConfigs returns enabled configs ordered by position.
func (m *MemoryStore) FindEnabledConfigs(context.Context) ([]domain.DashboardConfig, error) {
	return m.filterConfigs(func(cfg domain.DashboardConfig) bool { return cfg.Enabled })
}

// FindConfigByID returns a config or ErrNotFound.
func (m *MemoryStore) FindConfigByID(_ context.Context, id string) (domain.DashboardConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return domain.DashboardConfig{}, m.readErr
	}
	cfg, ok := m.configs[id]
	if !ok {
		return domain.DashboardConfig{}, ErrNotFound
	}
	return cfg, nil
}

// DeleteConfig removes a config by ID. Deleting a missing ID is a no-op.
func (m *MemoryStore) DeleteConfig(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	delete(m.configs, id)
	return nil
}

// CountConfigs returns the number of stored configs.
func (m *MemoryStore) CountConfigs(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return 0, m.readErr
	}
	return int64(len(m.configs)), nil
}

// Ping always reports healthy.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close(context.Context) error {
	return nil
}

func (m *MemoryStore) filterConfigs(keep func(domain.DashboardConfig) bool) ([]domain.DashboardConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, m.readErr
	}

	configs := make([]domain.DashboardConfig, 0, len(m.configs))
	for _, cfg := range m.configs {
		if keep(cfg) {
			configs = append(configs, cfg)
		}
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Position < configs[j].Position })
	return configs, nil
}
