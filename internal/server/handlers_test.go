package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/arjunrao/findata/internal/analytics"
	"github.com/arjunrao/findata/internal/dashboard"
	"github.com/arjunrao/findata/internal/domain"
	"github.com/arjunrao/findata/internal/ingest"
	"github.com/arjunrao/findata/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := analytics.NewEngine(mem)
	dash := dashboard.NewService(logger, mem, mem, engine)
	pipeline := ingest.NewPipeline(logger, mem)
	handlers := NewAPIHandlers(logger, pipeline, engine, dash)

	router := NewRouter(logger, RouterDependencies{
		Health: StoreHealthService{Store: mem},
		API:    handlers,
	})
	return router, mem
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestHandleUploadCSV(t *testing.T) {
	router, mem := newTestRouter(t)

	csvContent := "transaction_id,sender,receiver,amount,type,timestamp,status,fraud_flag,lat,lon,device,slice,latency,bandwidth,pin\n" +
		"TXN-001,ACC-1,ACC-2,42.50,transfer,2024-05-01T12:00:00,completed,false,0,0,Mobile,slice-1,10,80,560001\n" +
		"TXN-BAD,ACC-1\n" +
		"TXN-002,ACC-3,ACC-4,10.00,payment,2024-05-02T12:00:00,pending,true,0,0,ATM,slice-2,5,40,560002\n"

	body, contentType := multipartBody(t, "file", "transactions.csv", csvContent)
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/upload/csv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var batch []domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &batch); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 ingested transactions, got %d", len(batch))
	}

	stored, err := mem.FindAll(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected batch persisted, got %d", len(stored))
	}
}

func TestHandleUploadCSV_MissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/upload/csv", strings.NewReader(""))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleUploadJSONByPath_MissingFile(t *testing.T) {
	router, mem := newTestRouter(t)

	form := url.Values{"path": {"/nonexistent/transactions.json"}}
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/upload/json/path", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := mem.FindAll(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected store untouched, got %d records", len(stored))
	}
}

func TestHandleUploadJSON_MalformedDocument(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "file", "transactions.json", `{"broken":`)
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/upload/json", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSummary(t *testing.T) {
	router, mem := newTestRouter(t)

	if _, err := mem.SaveAll(context.Background(), []domain.Transaction{
		{Type: "transfer", Amount: 10, FraudFlag: true, DeviceUsed: "ATM"},
		{Type: "payment", Amount: 5, FraudFlag: false, DeviceUsed: "Web"},
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var summary domain.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.TotalTransactions != 2 || summary.TotalAmount != 15 || summary.FraudCount != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestHandleAllAnalytics(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/all", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var results []domain.AnalyticsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 views, got %d", len(results))
	}
	if results[2].ChartType != domain.ChartDoughnut {
		t.Errorf("expected third view to be the fraud doughnut, got %q", results[2].ChartType)
	}
}

func TestHandleConfigsLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := `{"chartType":"bar","title":"My Panel","dataSource":"amount","timeRange":"all","refreshInterval":60,"enabled":true,"position":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/configs", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created domain.DashboardConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an assigned config ID")
	}

	// Toggle it off.
	req = httptest.NewRequest(http.MethodPost, "/api/dashboard/configs/"+created.ID+"/toggle", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected status 200, got %d", rec.Code)
	}

	// It no longer shows among active configs.
	req = httptest.NewRequest(http.MethodGet, "/api/dashboard/configs/active", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("active: expected status 200, got %d", rec.Code)
	}
	var active []domain.DashboardConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &active); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active configs, got %d", len(active))
	}

	// Delete it.
	req = httptest.NewRequest(http.MethodDelete, "/api/dashboard/configs/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected status 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/dashboard/configs/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected status 404, got %d", rec.Code)
	}
}

func TestHandleToggleConfig_Missing(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/configs/unknown/toggle", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandleConfigAnalytics(t *testing.T) {
	router, mem := newTestRouter(t)

	if _, err := mem.SaveAll(context.Background(), []domain.Transaction{
		{Status: "completed", Type: "transfer", Amount: 1},
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/analytics/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var result domain.AnalyticsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ChartType != domain.ChartPie {
		t.Errorf("expected pie chart for status source, got %q", result.ChartType)
	}
}

func TestHandleDashboardData_FilterPrecedence(t *testing.T) {
	router, mem := newTestRouter(t)

	if _, err := mem.SaveAll(context.Background(), []domain.Transaction{
		{TransactionID: "TXN-1", Status: "completed", Type: "transfer"},
		{TransactionID: "TXN-2", Status: "pending", Type: "transfer"},
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/dashboard?status=pending&type=transfer", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var txs []domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(txs) != 1 || txs[0].TransactionID != "TXN-2" {
		t.Fatalf("expected status filter to win, got %+v", txs)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("expected ok status, got %s", rec.Body.String())
	}
}
