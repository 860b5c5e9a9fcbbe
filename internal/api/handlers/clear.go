package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CaoDuyThanh/drtrace/internal/api/errors"
	"github.com/CaoDuyThanh/drtrace/internal/cache"
	"github.com/CaoDuyThanh/drtrace/internal/core"
)

// ClearHandler handles POST /logs/clear?application_id=..., an
// administrative purge of all records for one application.
type ClearHandler struct {
	store  core.LogStore
	cache  *cache.Manager
	logger *slog.Logger
}

// NewClearHandler constructs a ClearHandler.
func NewClearHandler(store core.LogStore, cacheMgr *cache.Manager, logger *slog.Logger) *ClearHandler {
	return &ClearHandler{store: store, cache: cacheMgr, logger: logger}
}

func (h *ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	applicationID := r.URL.Query().Get("application_id")
	if applicationID == "" {
		errors.WriteError(w, errors.InvalidParams("application_id is required"))
		return
	}

	removed, err := h.store.Clear(r.Context(), applicationID)
	if err != nil {
		h.logger.Error("clear: store clear failed", "error", err, "application_id", applicationID)
		errors.WriteError(w, errors.Internal("failed to clear logs"))
		return
	}

	if h.cache != nil {
		h.cache.InvalidateAll(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"removed": removed})
}
