package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arjunrao/findata/internal/analytics"
	"github.com/arjunrao/findata/internal/domain"
)

// ConfigRepository is the persistence contract for dashboard configs.
type ConfigRepository interface {
	SaveConfig(ctx context.Context, cfg domain.DashboardConfig) (domain.DashboardConfig, error)
	FindConfigs(ctx context.Context) ([]domain.DashboardConfig, error)
	FindEnabledConfigs(ctx context.Context) ([]domain.DashboardConfig, error)
	FindConfigByID(ctx context.Context, id string) (domain.DashboardConfig, error)
	DeleteConfig(ctx context.Context, id string) error
	CountConfigs(ctx context.Context) (int64, error)
}

// TransactionQuerier serves the dashboard-data query path.
type TransactionQuerier interface {
	FindAll(ctx context.Context) ([]domain.Transaction, error)
	FindByStatus(ctx context.Context, status string) ([]domain.Transaction, error)
	FindByType(ctx context.Context, typ string) ([]domain.Transaction, error)
}

// Service manages dashboard panel configurations and dispatches
// analytics requests for configured data sources.
type Service struct {
	logger  *slog.Logger
	configs ConfigRepository
	txs     TransactionQuerier
	engine  *analytics.Engine
}

// NewService constructs a dashboard Service.
func NewService(logger *slog.Logger, configs ConfigRepository, txs TransactionQuerier, engine *analytics.Engine) *Service {
	return &Service{
		logger:  logger,
		configs: configs,
		txs:     txs,
		engine:  engine,
	}
}

// AllConfigs lists every dashboard config.
func (s *Service) AllConfigs(ctx context.Context) ([]domain.DashboardConfig, error) {
	return s.configs.FindConfigs(ctx)
}

// ActiveConfigs lists enabled configs in layout order.
func (s *Service) ActiveConfigs(ctx context.Context) ([]domain.DashboardConfig, error) {
	return s.configs.FindEnabledConfigs(ctx)
}

// SaveConfig persists a config, assigning an ID when absent.
func (s *Service) SaveConfig(ctx context.Context, cfg domain.DashboardConfig) (domain.DashboardConfig, error) {
	return s.configs.SaveConfig(ctx, cfg)
}

// ConfigByID fetches a config by ID.
func (s *Service) ConfigByID(ctx context.Context, id string) (domain.DashboardConfig, error) {
	return s.configs.FindConfigByID(ctx, id)
}

// DeleteConfig removes a config by ID.
func (s *Service) DeleteConfig(ctx context.Context, id string) error {
	return s.configs.DeleteConfig(ctx, id)
}

// ToggleConfig flips the enabled state of a config.
func (s *Service) ToggleConfig(ctx context.Context, id string) error {
	cfg, err := s.configs.FindConfigByID(ctx, id)
	if err != nil {
		return err
	}
	cfg.Enabled = !cfg.Enabled
	if _, err := s.configs.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("toggle dashboard config %s: %w", id, err)
	}
	return nil
}

// TransactionsFor serves the dashboard-data query path. A status
// filter takes precedence over a type filter; with neither set the
// full snapshot is returned.
func (s *Service) TransactionsFor(ctx context.Context, status, typ string) ([]domain.Transaction, error) {
	if status != "" {
		return s.txs.FindByStatus(ctx, status)
	}
	if typ != "" {
		return s.txs.FindByType(ctx, typ)
	}
	return s.txs.FindAll(ctx)
}

// AnalyticsFor computes the view bound to a config data source. An
// unknown source falls back to the amount-by-type view.
func (s *Service) AnalyticsFor(ctx context.Context, dataSource string) (domain.AnalyticsResult, error) {
	switch strings.ToLower(dataSource) {
	case domain.SourceStatus:
		return s.engine.CountByStatus(ctx)
	case domain.SourceFraud:
		return s.engine.FraudAnalysis(ctx)
	case domain.SourceTrend:
		return s.engine.AmountTrend(ctx)
	case domain.SourceDevice:
		return s.engine.DeviceUsage(ctx)
	default:
		return s.engine.AmountByType(ctx)
	}
}

// EnsureDefaults seeds the default panel set on first boot. The
// operation is idempotent: it only writes when the config store is
// empty.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	count, err := s.configs.CountConfigs(ctx)
	if err != nil {
		return fmt.Errorf("count dashboard configs: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []domain.DashboardConfig{
		{ChartType: domain.ChartBar, Title: "Transaction Amount by Type", DataSource: domain.SourceAmount, TimeRange: "all", RefreshInterval: 30, Enabled: true, Position: 1},
		{ChartType: domain.ChartPie, Title: "Transaction Status Distribution", DataSource: domain.SourceStatus, TimeRange: "all", RefreshInterval: 30, Enabled: true, Position: 2},
		{ChartType: domain.ChartDoughnut, Title: "Fraud Analysis", DataSource: domain.SourceFraud, TimeRange: "all", RefreshInterval: 30, Enabled: true, Position: 3},
		{ChartType: domain.ChartLine, Title: "Transaction Trend", DataSource: domain.SourceTrend, TimeRange: "all", RefreshInterval: 30, Enabled: true, Position: 4},
	}
	for _, cfg := range defaults {
		if _, err := s.configs.SaveConfig(ctx, cfg); err != nil {
			return fmt.Errorf("seed dashboard config %q: %w", cfg.Title, err)
		}
	}

	s.logger.Info("seeded default dashboard configs", "count", len(defaults))
	return nil
}
