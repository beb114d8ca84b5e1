package domain

import "time"

// Chart type identifiers understood by the dashboard frontend.
const (
	ChartBar      = "bar"
	ChartPie      = "pie"
	ChartDoughnut = "doughnut"
	ChartLine     = "line"
)

// AnalyticsResult is one chart-ready aggregation over the stored
// transaction set. Labels[i] pairs with Data[i]; both slices always
// have equal length. Results are built fresh on every request and
// never persisted.
type AnalyticsResult struct {
	ChartType string         `json:"chartType"`
	Title     string         `json:"title"`
	Labels    []string       `json:"labels"`
	Data      []float64      `json:"data"`
	Options   map[string]any `json:"options,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewAnalyticsResult builds a result stamped with the current instant.
func NewAnalyticsResult(chartType, title string, labels []string, data []float64) AnalyticsResult {
	return AnalyticsResult{
		ChartType: chartType,
		Title:     title,
		Labels:    labels,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Summary is the scalar dashboard aggregate. FraudCount counts every
// flagged record regardless of device, unlike the device-qualified
// fraud-analysis chart.
type Summary struct {
	TotalTransactions int     `json:"totalTransactions"`
	TotalAmount       float64 `json:"totalAmount"`
	FraudCount        int     `json:"fraudCount"`
	UniqueDevices     int     `json:"uniqueDevices"`
	UniqueTypes       int     `json:"uniqueTypes"`
}
