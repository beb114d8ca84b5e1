package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arjunrao/findata/internal/analytics"
	"github.com/arjunrao/findata/internal/dashboard"
	"github.com/arjunrao/findata/internal/domain"
	"github.com/arjunrao/findata/internal/ingest"
	"github.com/arjunrao/findata/internal/store"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger    *slog.Logger
	pipeline  *ingest.Pipeline
	engine    *analytics.Engine
	dashboard *dashboard.Service
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, pipeline *ingest.Pipeline, engine *analytics.Engine, dash *dashboard.Service) *APIHandlers {
	return &APIHandlers{
		logger:    logger,
		pipeline:  pipeline,
		engine:    engine,
		dashboard: dash,
	}
}

// --- Ingestion ---

func (h *APIHandlers) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	batch, err := h.pipeline.IngestCSV(r.Context(), file)
	if err != nil {
		h.respondIngestError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

func (h *APIHandlers) handleUploadCSVByPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	path := strings.TrimSpace(r.FormValue("path"))
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	batch, err := h.pipeline.LoadCSV(r.Context(), path)
	if err != nil {
		h.respondIngestError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

func (h *APIHandlers) handleUploadJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	batch, err := h.pipeline.IngestJSON(r.Context(), file)
	if err != nil {
		h.respondIngestError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

func (h *APIHandlers) handleUploadJSONByPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	path := strings.TrimSpace(r.FormValue("path"))
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	batch, err := h.pipeline.LoadJSON(r.Context(), path)
	if err != nil {
		h.respondIngestError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// --- Transactions ---

func (h *APIHandlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	txs, err := h.dashboard.TransactionsFor(r.Context(), "", "")
	if err != nil {
		h.logger.Error("failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

func (h *APIHandlers) handleDashboardData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := r.URL.Query()
	txs, err := h.dashboard.TransactionsFor(r.Context(), query.Get("status"), query.Get("type"))
	if err != nil {
		h.logger.Error("failed to query dashboard data", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query dashboard data")
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

// --- Analytics ---

func (h *APIHandlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	summary, err := h.engine.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to compute summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *APIHandlers) handleAllAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	results, err := h.engine.AllAnalytics(r.Context())
	if err != nil {
		h.logger.Error("failed to compute analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *APIHandlers) handleAmountByType(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.engine.AmountByType)
}

func (h *APIHandlers) handleStatusDistribution(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.engine.CountByStatus)
}

func (h *APIHandlers) handleFraudAnalysis(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.engine.FraudAnalysis)
}

func (h *APIHandlers) handleAmountTrend(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.engine.AmountTrend)
}

func (h *APIHandlers) handleDeviceUsage(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.engine.DeviceUsage)
}

// --- Dashboard configs ---

func (h *APIHandlers) handleConfigs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		configs, err := h.dashboard.AllConfigs(r.Context())
		if err != nil {
			h.logger.Error("failed to list dashboard configs", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list dashboard configs")
			return
		}
		respondJSON(w, http.StatusOK, configs)
	case http.MethodPost:
		var cfg domain.DashboardConfig
		if err := decodeJSON(r, &cfg); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := h.dashboard.SaveConfig(r.Context(), cfg)
		if err != nil {
			h.logger.Error("failed to save dashboard config", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save dashboard config")
			return
		}
		respondJSON(w, http.StatusCreated, saved)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) handleConfigByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/dashboard/configs/"), "/")

	if rest == "active" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		configs, err := h.dashboard.ActiveConfigs(r.Context())
		if err != nil {
			h.logger.Error("failed to list active configs", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list active configs")
			return
		}
		respondJSON(w, http.StatusOK, configs)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/toggle"); ok {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.toggleConfig(w, r, id)
		return
	}

	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateConfig(w, r, rest)
	case http.MethodDelete:
		h.deleteConfig(w, r, rest)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

func (h *APIHandlers) updateConfig(w http.ResponseWriter, r *http.Request, id string) {
	var cfg domain.DashboardConfig
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.dashboard.ConfigByID(r.Context(), id); err != nil {
		h.respondConfigError(w, err)
		return
	}

	cfg.ID = id
	saved, err := h.dashboard.SaveConfig(r.Context(), cfg)
	if err != nil {
		h.logger.Error("failed to update dashboard config", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to update dashboard config")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (h *APIHandlers) deleteConfig(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.dashboard.ConfigByID(r.Context(), id); err != nil {
		h.respondConfigError(w, err)
		return
	}

	if err := h.dashboard.DeleteConfig(r.Context(), id); err != nil {
		h.logger.Error("failed to delete dashboard config", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete dashboard config")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (h *APIHandlers) toggleConfig(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.dashboard.ToggleConfig(r.Context(), id); err != nil {
		h.respondConfigError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": id})
}

func (h *APIHandlers) handleConfigAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	dataSource := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/dashboard/analytics/"), "/")
	if dataSource == "" {
		writeError(w, http.StatusBadRequest, "data source is required")
		return
	}

	result, err := h.dashboard.AnalyticsFor(r.Context(), dataSource)
	if err != nil {
		h.logger.Error("failed to compute analytics", "error", err, "dataSource", dataSource)
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// --- Helpers ---

func (h *APIHandlers) respondView(w http.ResponseWriter, r *http.Request, view func(context.Context) (domain.AnalyticsResult, error)) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	result, err := view(r.Context())
	if err != nil {
		h.logger.Error("failed to compute analytics view", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "failed to compute analytics view")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *APIHandlers) respondIngestError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ingest.ErrSourceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ingest.ErrDecode):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("ingestion failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "ingestion failed")
	}
}

func (h *APIHandlers) respondConfigError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "dashboard config not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "dashboard config lookup failed")
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
