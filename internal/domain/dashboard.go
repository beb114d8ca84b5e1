package domain

// Data source identifiers a dashboard panel can be bound to.
const (
	SourceAmount = "amount"
	SourceStatus = "status"
	SourceFraud  = "fraud"
	SourceTrend  = "trend"
	SourceDevice = "device"
)

// DashboardConfig describes one configured dashboard panel: which
// analytics view feeds it, how it is rendered and where it sits in the
// layout.
type DashboardConfig struct {
	ID              string `json:"id,omitempty"`
	ChartType       string `json:"chartType"`
	Title           string `json:"title"`
	DataSource      string `json:"dataSource"`
	TimeRange       string `json:"timeRange"`
	RefreshInterval int    `json:"refreshInterval"` // seconds
	Enabled         bool   `json:"enabled"`
	Position        int    `json:"position"`
}
