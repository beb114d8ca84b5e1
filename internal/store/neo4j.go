package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/arjunrao/findata/internal/domain"
)

const (
	saveTransactionsCypher = `
UNWIND $rows AS row
CREATE (t:Transaction)
SET t = row`

	findTransactionsCypher = `
MATCH (t:Transaction)
RETURN t { .* } AS tx`

	findTransactionsByStatusCypher = `
MATCH (t:Transaction)
WHERE t.status = $status
RETURN t { .* } AS tx`

	findTransactionsByTypeCypher = `
MATCH (t:Transaction)
WHERE t.type = $type
RETURN t { .* } AS tx`

	saveConfigCypher = `
MERGE (c:DashboardConfig {id: $id})
SET c = $props`

	findConfigsCypher = `
MATCH (c:DashboardConfig)
RETURN c { .* } AS cfg
ORDER BY c.position`

	findEnabledConfigsCypher = `
MATCH (c:DashboardConfig)
WHERE c.enabled = true
RETURN c { .* } AS cfg
ORDER BY c.position`

	findConfigByIDCypher = `
MATCH (c:DashboardConfig {id: $id})
RETURN c { .* } AS cfg`

	deleteConfigCypher = `
MATCH (c:DashboardConfig {id: $id})
DELETE c`

	countConfigsCypher = `
MATCH (c:DashboardConfig)
RETURN count(c) AS total`
)

// Neo4jStore persists transactions and dashboard configs as graph
// nodes using the official Neo4j driver. It implements both
// TransactionStore and ConfigStore.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore establishes a Bolt connection and verifies it before
// returning. Neptune's openCypher endpoint is wire-compatible with the
// Bolt protocol, so the same driver serves both local Neo4j and AWS
// Neptune.
func NewNeo4jStore(ctx context.Context, opts Options) (*Neo4jStore, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify store connectivity: %w", err)
	}

	return &Neo4jStore{
		driver:   driver,
		database: opts.Database,
	}, nil
}

// SaveAll persists the batch in a single write statement and returns
// the records with their assigned IDs.
func (s *Neo4jStore) SaveAll(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	if len(txs) == 0 {
		return []domain.Transaction{}, nil
	}

	saved := make([]domain.Transaction, len(txs))
	rows := make([]map[string]any, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		saved[i] = tx
		rows[i] = transactionProperties(tx)
	}

	if _, err := s.executeWrite(ctx, saveTransactionsCypher, map[string]any{"rows": rows}); err != nil {
		return nil, fmt.Errorf("save transactions: %w", err)
	}
	return saved, nil
}

// FindAll returns the full stored transaction snapshot.
func (s *Neo4jStore) FindAll(ctx context.Context) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, findTransactionsCypher, nil)
}

// FindByStatus returns transactions whose status equals the argument.
func (s *Neo4jStore) FindByStatus(ctx context.Context, status string) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, findTransactionsByStatusCypher, map[string]any{"status": status})
}

// FindByType returns transactions whose type equals the argument.
func (s *Neo4jStore) FindByType(ctx context.Context, typ string) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, findTransactionsByTypeCypher, map[string]any{"type": typ})
}

// SaveConfig upserts a dashboard config, assigning an ID when absent.
func (s *Neo4jStore) SaveConfig(ctx context.Context, cfg domain.DashboardConfig) (domain.DashboardConfig, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	params := map[string]any{
		"id":    cfg.ID,
		"props": configProperties(cfg),
	}
	if _, err := s.executeWrite(ctx, saveConfigCypher, params); err != nil {
		return domain.DashboardConfig{}, fmt.Errorf("save dashboard config %s: %w", cfg.ID, err)
	}
	return cfg, nil
}

// FindConfigs returns every dashboard config ordered by position.
func (s *Neo4jStore) FindConfigs(ctx context.Context) ([]domain.DashboardConfig, error) {
	return s.queryConfigs(ctx, findConfigsCypher, nil)
}

// FindEnabledConfigs returns enabled configs ordered by position.
func (s *Neo4jStore) FindEnabledConfigs(ctx context.Context) ([]domain.DashboardConfig, error) {
	return s.queryConfigs(ctx, findEnabledConfigsCypher, nil)
}

// FindConfigByID returns a single config or ErrNotFound.
func (s *Neo4jStore) FindConfigByID(ctx context.Context, id string) (domain.DashboardConfig, error) {
	configs, err := s.queryConfigs(ctx, findConfigByIDCypher, map[string]any{"id": id})
	if err != nil {
		return domain.DashboardConfig{}, err
	}
	if len(configs) == 0 {
		return domain.DashboardConfig{}, ErrNotFound
	}
	return configs[0], nil
}

// DeleteConfig removes a config node by ID.
func (s *Neo4jStore) DeleteConfig(ctx context.Context, id string) error {
	if _, err := s.executeWrite(ctx, deleteConfigCypher, map[string]any{"id": id}); err != nil {
		return fmt.Errorf("delete dashboard config %s: %w", id, err)
	}
	return nil
}

// CountConfigs returns the number of stored dashboard configs.
func (s *Neo4jStore) CountConfigs(ctx context.Context) (int64, error) {
	records, err := s.executeRead(ctx, countConfigsCypher, nil)
	if err != nil {
		return 0, fmt.Errorf("count dashboard configs: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return toInt64(records[0]["total"]), nil
}

// Ping verifies store connectivity.
func (s *Neo4jStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) queryTransactions(ctx context.Context, cypher string, params map[string]any) ([]domain.Transaction, error) {
	records, err := s.executeRead(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(records))
	for _, record := range records {
		props, ok := record["tx"].(map[string]any)
		if !ok {
			continue
		}
		txs = append(txs, transactionFromProperties(props))
	}
	return txs, nil
}

func (s *Neo4jStore) queryConfigs(ctx context.Context, cypher string, params map[string]any) ([]domain.DashboardConfig, error) {
	records, err := s.executeRead(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("query dashboard configs: %w", err)
	}

	configs := make([]domain.DashboardConfig, 0, len(records))
	for _, record := range records {
		props, ok := record["cfg"].(map[string]any)
		if !ok {
			continue
		}
		configs = append(configs, configFromProperties(props))
	}
	return configs, nil
}

func (s *Neo4jStore) executeWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return consumeRecords(ctx, res)
}

func (s *Neo4jStore) executeRead(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return consumeRecords(ctx, res)
}

func consumeRecords(ctx context.Context, res neo4j.ResultWithContext) ([]map[string]any, error) {
	var records []map[string]any
	for res.Next(ctx) {
		rec := res.Record()
		record := make(map[string]any, len(rec.Keys))
		for _, key := range rec.Keys {
			value, _ := rec.Get(key)
			record[key] = value
		}
		records = append(records, record)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func transactionProperties(tx domain.Transaction) map[string]any {
	return map[string]any{
		"id":                tx.ID,
		"transactionId":     tx.TransactionID,
		"senderAccountId":   tx.SenderAccountID,
		"receiverAccountId": tx.ReceiverAccountID,
		"amount":            tx.Amount,
		"type":              tx.Type,
		"timestamp":         tx.Timestamp,
		"status":            tx.Status,
		"fraudFlag":         tx.FraudFlag,
		"latitude":          tx.Latitude,
		"longitude":         tx.Longitude,
		"deviceUsed":        tx.DeviceUsed,
		"networkSliceId":    tx.NetworkSliceID,
		"latency":           tx.Latency,
		"bandwidth":         tx.Bandwidth,
		"pinCode":           tx.PinCode,
	}
}

func transactionFromProperties(props map[string]any) domain.Transaction {
	return domain.Transaction{
		ID:                toString(props["id"]),
		TransactionID:     toString(props["transactionId"]),
		SenderAccountID:   toString(props["senderAccountId"]),
		ReceiverAccountID: toString(props["receiverAccountId"]),
		Amount:            toFloat64(props["amount"]),
		Type:              toString(props["type"]),
		Timestamp:         toString(props["timestamp"]),
		Status:            toString(props["status"]),
		FraudFlag:         toBool(props["fraudFlag"]),
		Latitude:          toString(props["latitude"]),
		Longitude:         toString(props["longitude"]),
		DeviceUsed:        toString(props["deviceUsed"]),
		NetworkSliceID:    toString(props["networkSliceId"]),
		Latency:           int(toInt64(props["latency"])),
		Bandwidth:         int(toInt64(props["bandwidth"])),
		PinCode:           int(toInt64(props["pinCode"])),
	}
}

func configProperties(cfg domain.DashboardConfig) map[string]any {
	return map[string]any{
		"id":              cfg.ID,
		"chartType":       cfg.ChartType,
		"title":           cfg.Title,
		"dataSource":      cfg.DataSource,
		"timeRange":       cfg.TimeRange,
		"refreshInterval": cfg.RefreshInterval,
		"enabled":         cfg.Enabled,
		"position":        cfg.Position,
	}
}

func configFromProperties(props map[string]any) domain.DashboardConfig {
	return domain.DashboardConfig{
		ID:              toString(props["id"]),
		ChartType:       toString(props["chartType"]),
		Title:           toString(props["title"]),
		DataSource:      toString(props["dataSource"]),
		TimeRange:       toString(props["timeRange"]),
		RefreshInterval: int(toInt64(props["refreshInterval"])),
		Enabled:         toBool(props["enabled"]),
		Position:        int(toInt64(props["position"])),
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toFloat64(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	}
	return 0
}

func toInt64(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	}
	return 0
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
