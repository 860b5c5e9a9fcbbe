package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/CaoDuyThanh/drtrace/internal/api/errors"
	"github.com/CaoDuyThanh/drtrace/internal/cache"
	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
	maxRegexLength    = 500
)

// QueryHandler handles GET /logs/query.
type QueryHandler struct {
	store   core.LogStore
	cache   *cache.Manager
	metrics *metrics.BusinessMetrics
	logger  *slog.Logger
}

// NewQueryHandler constructs a QueryHandler.
func NewQueryHandler(store core.LogStore, cacheMgr *cache.Manager, reg *metrics.Registry, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{store: store, cache: cacheMgr, metrics: reg.Business(), logger: logger}
}

// ServeHTTP parses and validates every query param, enforcing the
// message_contains/message_regex mutual exclusion, the start_ts<=end_ts
// invariant, and the enumerated min_level/limit bounds, before ever
// touching the store.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, apiErr := parseQueryFilter(q)
	if apiErr != nil {
		errors.WriteError(w, apiErr)
		return
	}

	cacheKey := ""
	if h.cache != nil {
		cacheKey = cache.Key(filter)
		if records, ok := h.cache.Get(r.Context(), cacheKey); ok {
			h.metrics.QueriesTotal.WithLabelValues(filter.ApplicationID, "hit").Inc()
			h.metrics.QueryResultSize.Observe(float64(len(records)))
			writeQueryResult(w, records)
			return
		}
	}

	records, err := h.store.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("query: store query failed", "error", err)
		errors.WriteError(w, errors.Internal("failed to query logs"))
		return
	}

	h.metrics.QueriesTotal.WithLabelValues(filter.ApplicationID, "miss").Inc()
	h.metrics.QueryResultSize.Observe(float64(len(records)))

	if h.cache != nil {
		h.cache.Set(r.Context(), cacheKey, records)
	}

	writeQueryResult(w, records)
}

func writeQueryResult(w http.ResponseWriter, records []core.StoredRecord) {
	if records == nil {
		records = []core.StoredRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"results": records,
		"count":   len(records),
	})
}

func parseQueryFilter(q map[string][]string) (core.QueryFilter, *errors.APIError) {
	get := func(key string) string {
		if v, ok := q[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	startRaw, endRaw := get("start_ts"), get("end_ts")
	if startRaw == "" || endRaw == "" {
		return core.QueryFilter{}, errors.InvalidParams("start_ts and end_ts are required")
	}
	startTS, err := strconv.ParseFloat(startRaw, 64)
	if err != nil {
		return core.QueryFilter{}, errors.InvalidTimeFormat("start_ts must be a numeric seconds value")
	}
	endTS, err := strconv.ParseFloat(endRaw, 64)
	if err != nil {
		return core.QueryFilter{}, errors.InvalidTimeFormat("end_ts must be a numeric seconds value")
	}
	if startTS > endTS {
		return core.QueryFilter{}, errors.InvalidTimeRange("start_ts must be <= end_ts")
	}

	messageContains := get("message_contains")
	messageRegex := get("message_regex")
	if messageContains != "" && messageRegex != "" {
		return core.QueryFilter{}, errors.InvalidParams("Cannot use both filters")
	}
	if len(messageRegex) > maxRegexLength {
		return core.QueryFilter{}, errors.InvalidParams("message_regex exceeds the 500 character limit")
	}
	if messageRegex != "" {
		if _, err := regexp.Compile(messageRegex); err != nil {
			return core.QueryFilter{}, errors.InvalidParams("message_regex does not compile: " + err.Error())
		}
	}

	var minLevel *core.Level
	if raw := get("min_level"); raw != "" {
		lvl, err := core.ParseLevel(raw)
		if err != nil {
			return core.QueryFilter{}, errors.InvalidLevel(err.Error())
		}
		minLevel = &lvl
	}

	// An absent limit means defaultQueryLimit; an explicit limit=0 is
	// accepted and yields an empty result set; larger values are capped
	// at maxQueryLimit.
	limit := defaultQueryLimit
	if raw := get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return core.QueryFilter{}, errors.InvalidParams("limit must be a non-negative integer")
		}
		limit = parsed
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	return core.QueryFilter{
		ApplicationID:   get("application_id"),
		ModuleName:      get("module_name"),
		MinLevel:        minLevel,
		StartTS:         startTS,
		EndTS:           endTS,
		MessageContains: messageContains,
		MessageRegex:    messageRegex,
		Limit:           limit,
	}, nil
}
