package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/CaoDuyThanh/drtrace/internal/config"
	"github.com/CaoDuyThanh/drtrace/internal/core"
)

// StatusHandler handles GET /status: cheap service metadata for liveness
// probing.
type StatusHandler struct {
	cfg     *config.Config
	store   core.LogStore
	version string
}

// NewStatusHandler constructs a StatusHandler.
func NewStatusHandler(cfg *config.Config, store core.LogStore, version string) *StatusHandler {
	return &StatusHandler{cfg: cfg, store: store, version: version}
}

type statusResponse struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Backend        string `json:"storage_backend"`
	RetentionDays  int    `json:"retention_days"`
	StoreHealthy   bool   `json:"store_healthy"`
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	healthy := h.store.Health(r.Context()) == nil

	resp := statusResponse{
		Name:          "drtrace-daemon",
		Version:       h.version,
		Host:          h.cfg.Server.Host,
		Port:          h.cfg.Server.Port,
		Backend:       string(h.cfg.Storage.Backend),
		RetentionDays: h.cfg.Retention.Days,
		StoreHealthy:  healthy,
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}
