package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaoDuyThanh/drtrace/internal/logstore/memory"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func TestIngestHandler_AcceptsValidBatch(t *testing.T) {
	store := memory.New(discardLogger())
	h := NewIngestHandler(store, nil, metrics.New("drtrace_test_ingest_ok"), discardLogger())

	body := `{"application_id":"app-1","logs":[{"ts":1.0,"level":"info","message":"hi","application_id":"app-1","module_name":"mod"}]}`
	req := httptest.NewRequest(http.MethodPost, "/logs/ingest", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["accepted"])
}

func TestIngestHandler_RejectsMissingRequiredField(t *testing.T) {
	store := memory.New(discardLogger())
	h := NewIngestHandler(store, nil, metrics.New("drtrace_test_ingest_missing"), discardLogger())

	body := `{"application_id":"app-1","logs":[{"ts":1.0,"level":"info","message":"","application_id":"app-1","module_name":"mod"}]}`
	req := httptest.NewRequest(http.MethodPost, "/logs/ingest", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestIngestHandler_RejectsUnknownLevel(t *testing.T) {
	store := memory.New(discardLogger())
	h := NewIngestHandler(store, nil, metrics.New("drtrace_test_ingest_badlevel"), discardLogger())

	body := `{"application_id":"app-1","logs":[{"ts":1.0,"level":"catastrophic","message":"hi","application_id":"app-1","module_name":"mod"}]}`
	req := httptest.NewRequest(http.MethodPost, "/logs/ingest", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestIngestHandler_RejectsEmptyLogs(t *testing.T) {
	store := memory.New(discardLogger())
	h := NewIngestHandler(store, nil, metrics.New("drtrace_test_ingest_empty"), discardLogger())

	body := `{"application_id":"app-1","logs":[]}`
	req := httptest.NewRequest(http.MethodPost, "/logs/ingest", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
