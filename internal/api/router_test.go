package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaoDuyThanh/drtrace/internal/config"
	"github.com/CaoDuyThanh/drtrace/internal/logstore/memory"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func TestRouter_StatusAndOpenAPIAreReachable(t *testing.T) {
	logger := testLogger()
	store := memory.New(logger)
	cfg := &config.Config{}
	cfg.Storage.Backend = config.StorageBackendSQLite

	router := NewRouter(RouterConfig{
		Store:   store,
		Config:  cfg,
		Metrics: metrics.New("drtrace_test_router_reach"),
		Logger:  logger,
		Version: "0.1.0",
	})

	for _, path := range []string{"/status", "/openapi.json"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, "path %s", path)
	}
}

func TestRouter_IngestThenQueryRoundTrip(t *testing.T) {
	logger := testLogger()
	store := memory.New(logger)
	cfg := &config.Config{}
	cfg.Storage.Backend = config.StorageBackendSQLite

	router := NewRouter(RouterConfig{
		Store:   store,
		Config:  cfg,
		Metrics: metrics.New("drtrace_test_router_roundtrip"),
		Logger:  logger,
		Version: "0.1.0",
	})

	ingestBody := `{"application_id":"app-1","logs":[{"ts":5,"level":"info","message":"hi","application_id":"app-1","module_name":"mod"}]}`
	ingestReq := httptest.NewRequest(http.MethodPost, "/logs/ingest", bytes.NewBufferString(ingestBody))
	ingestRR := httptest.NewRecorder()
	router.ServeHTTP(ingestRR, ingestReq)
	require.Equal(t, http.StatusAccepted, ingestRR.Code)

	queryReq := httptest.NewRequest(http.MethodGet, "/logs/query?start_ts=0&end_ts=100", nil)
	queryRR := httptest.NewRecorder()
	router.ServeHTTP(queryRR, queryReq)
	assert.Equal(t, http.StatusOK, queryRR.Code)
}
