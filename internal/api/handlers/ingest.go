// Package handlers implements the daemon's five HTTP endpoints: ingest,
// query, clear, status, and openapi. Each gets its own file, a
// *slog.Logger and its dependencies injected through a constructor, JSON
// in/out via encoding/json, and structured errors via internal/api/errors.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CaoDuyThanh/drtrace/internal/api/errors"
	"github.com/CaoDuyThanh/drtrace/internal/cache"
	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

// IngestHandler handles POST /logs/ingest.
type IngestHandler struct {
	store   core.LogStore
	cache   *cache.Manager
	metrics *metrics.BusinessMetrics
	logger  *slog.Logger
}

// NewIngestHandler constructs an IngestHandler.
func NewIngestHandler(store core.LogStore, cacheMgr *cache.Manager, reg *metrics.Registry, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{store: store, cache: cacheMgr, metrics: reg.Business(), logger: logger}
}

// wireLogBatch mirrors internal/core.LogBatch's wire shape; its records
// decode directly into core.LogRecord. A record whose level is not a
// known token fails the whole decode (Level.UnmarshalJSON rejects it), so
// Validate only ever sees records with a recognized level.
type wireLogBatch struct {
	ApplicationID string           `json:"application_id"`
	Logs          []core.LogRecord `json:"logs"`
}

// ServeHTTP validates every record in the batch, rejecting the whole
// batch with 422 on the first violation, otherwise appending all of them
// and responding 202 with the accepted count.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var batch wireLogBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		errors.WriteError(w, errors.Validation("malformed request body: "+err.Error()))
		return
	}

	if len(batch.Logs) == 0 {
		errors.WriteError(w, errors.Validation("logs must contain at least one record"))
		return
	}

	for i := range batch.Logs {
		if batch.Logs[i].ApplicationID == "" {
			batch.Logs[i].ApplicationID = batch.ApplicationID
		}
		if err := batch.Logs[i].Validate(); err != nil {
			errors.WriteError(w, errors.Validation(err.Error()))
			return
		}
	}

	stored, err := h.store.Append(r.Context(), batch.Logs)
	if err != nil {
		h.logger.Error("ingest: append failed", "error", err, "application_id", batch.ApplicationID)
		errors.WriteError(w, errors.Internal("failed to persist batch"))
		return
	}

	h.metrics.LogsIngestedTotal.WithLabelValues(batch.ApplicationID).Add(float64(len(stored)))
	h.metrics.IngestBatchSize.Observe(float64(len(stored)))

	if h.cache != nil {
		h.cache.InvalidateAll(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"accepted": len(stored)})
}
