package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arjunrao/findata/internal/domain"
)

// Snapshot provides the full stored transaction set an analytics
// computation runs over.
type Snapshot interface {
	FindAll(ctx context.Context) ([]domain.Transaction, error)
}

// Engine computes dashboard aggregations over the full transaction
// snapshot. Every view is recomputed from scratch on each call; there
// is no caching or incremental state. Grouped views emit their labels
// in ascending lexicographic order, which is part of the contract.
type Engine struct {
	store Snapshot
}

// NewEngine constructs an Engine reading from the given store.
func NewEngine(store Snapshot) *Engine {
	return &Engine{store: store}
}

// AmountByType sums transaction amounts grouped by type.
func (e *Engine) AmountByType(ctx context.Context) (domain.AnalyticsResult, error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return domain.AnalyticsResult{}, err
	}

	sums := make(map[string]float64)
	for _, tx := range txs {
		sums[tx.Type] += tx.Amount
	}

	labels, data := sortedSeries(sums)
	return domain.NewAnalyticsResult(domain.ChartBar, "Transaction Amount by Type", labels, data), nil
}

// CountByStatus counts transactions grouped by status.
func (e *Engine) CountByStatus(ctx context.Context) (domain.AnalyticsResult, error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return domain.AnalyticsResult{}, err
	}

	counts := make(map[string]float64)
	for _, tx := range txs {
		counts[tx.Status]++
	}

	labels, data := sortedSeries(counts)
	return domain.NewAnalyticsResult(domain.ChartPie, "Transaction Count by Status", labels, data), nil
}

// FraudAnalysis buckets transactions into legitimate and fraudulent.
// A transaction counts as fraudulent only when its fraud flag is set
// AND the device used equals "ATM" (case-insensitive); a flagged
// record on any other device lands in the legitimate bucket. The
// device qualifier is intentional and relied on by dashboard
// consumers; the unqualified metric lives in Summary.FraudCount.
func (e *Engine) FraudAnalysis(ctx context.Context) (domain.AnalyticsResult, error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return domain.AnalyticsResult{}, err
	}

	fraudulent := 0
	for _, tx := range txs {
		if tx.FraudFlag && strings.EqualFold(tx.DeviceUsed, "ATM") {
			fraudulent++
		}
	}
	legitimate := len(txs) - fraudulent

	return domain.NewAnalyticsResult(
		domain.ChartDoughnut,
		"Fraud Analysis",
		[]string{"Legitimate", "Fraudulent"},
		[]float64{float64(legitimate), float64(fraudulent)},
	), nil
}

// AmountTrend sums amounts grouped by the date part of the timestamp,
// with date keys in ascending order. The date key is the first ten
// characters of the timestamp string; a shorter timestamp is used
// as-is.
func (e *Engine) AmountTrend(ctx context.Context) (domain.AnalyticsResult, error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return domain.AnalyticsResult{}, err
	}

	sums := make(map[string]float64)
	for _, tx := range txs {
		sums[dateKey(tx.Timestamp)] += tx.Amount
	}

	labels, data := sortedSeries(sums)
	return domain.NewAnalyticsResult(domain.ChartLine, "Transaction Amount Trend", labels, data), nil
}

// DeviceUsage counts transactions grouped by the device used.
func (e *Engine) DeviceUsage(ctx context.Context) (domain.AnalyticsResult, error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return domain.AnalyticsResult{}, err
	}

	counts := make(map[string]float64)
	for _, tx := range txs {
		counts[tx.DeviceUsed]++
	}

	labels, data := sortedSeries(counts)
	return domain.NewAnalyticsResult(domain.ChartBar, "Device Usage Analysis", labels, data), nil
}

// Summary computes the scalar dashboard aggregate.
func (e *Engine) Summary(ctx context.Context) (domain.Summary, error) {
	txs, err := e.snapshot(ctx)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		TotalTransactions: len(txs),
	}
	devices := make(map[string]struct{})
	types := make(map[string]struct{})
	for _, tx := range txs {
		summary.TotalAmount += tx.Amount
		if tx.FraudFlag {
			summary.FraudCount++
		}
		devices[tx.DeviceUsed] = struct{}{}
		types[tx.Type] = struct{}{}
	}
	summary.UniqueDevices = len(devices)
	summary.UniqueTypes = len(types)

	return summary, nil
}

// AllAnalytics returns the five chart views in their fixed dashboard
// order: amount-by-type, count-by-status, fraud-analysis,
// amount-trend, device-usage.
func (e *Engine) AllAnalytics(ctx context.Context) ([]domain.AnalyticsResult, error) {
	views := []func(context.Context) (domain.AnalyticsResult, error){
		e.AmountByType,
		e.CountByStatus,
		e.FraudAnalysis,
		e.AmountTrend,
		e.DeviceUsage,
	}

	results := make([]domain.AnalyticsResult, 0, len(views))
	for _, view := range views {
		result, err := view(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Engine) snapshot(ctx context.Context) ([]domain.Transaction, error) {
	txs, err := e.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transaction snapshot: %w", err)
	}
	return txs, nil
}

func sortedSeries(groups map[string]float64) ([]string, []float64) {
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	data := make([]float64, len(labels))
	for i, label := range labels {
		data[i] = groups[label]
	}
	return labels, data
}

func dateKey(timestamp string) string {
	if len(timestamp) > 10 {
		return timestamp[:10]
	}
	return timestamp
}
