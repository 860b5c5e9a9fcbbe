package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaoDuyThanh/drtrace/internal/logstore/memory"
)

func TestClearHandler_RemovesRecordsForApplication(t *testing.T) {
	store := memory.New(discardLogger())
	seedRecord(t, store, 10, "app-1", "hello")
	seedRecord(t, store, 20, "app-2", "other app")

	h := NewClearHandler(store, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/logs/clear?application_id=app-1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp["removed"])
}

func TestClearHandler_RequiresApplicationID(t *testing.T) {
	store := memory.New(discardLogger())
	h := NewClearHandler(store, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/logs/clear", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
