package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPIHandler handles GET /openapi.json: a machine-readable
// description of every endpoint, parameter, and response field name.
// Consumers are expected to discover field names from this document
// dynamically rather than hard-code them, so the canonical `ts` field
// name (never `timestamp`) is spelled out here exactly as it appears on
// the wire.
type OpenAPIHandler struct {
	version string
}

// NewOpenAPIHandler constructs an OpenAPIHandler.
func NewOpenAPIHandler(version string) *OpenAPIHandler {
	return &OpenAPIHandler{version: version}
}

var logRecordSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"ts":             map[string]any{"type": "number", "description": "Unix seconds, UTC, fractional"},
		"level":          map[string]any{"type": "string", "enum": []string{"debug", "info", "warn", "error", "critical"}},
		"message":        map[string]any{"type": "string"},
		"application_id": map[string]any{"type": "string"},
		"module_name":    map[string]any{"type": "string"},
		"service_name":   map[string]any{"type": "string"},
		"file_path":      map[string]any{"type": "string"},
		"line_no":        map[string]any{"type": "integer"},
		"exception_type": map[string]any{"type": "string"},
		"stacktrace":     map[string]any{"type": "string"},
		"context":        map[string]any{"type": "object"},
	},
	"required": []string{"ts", "level", "message", "application_id", "module_name"},
}

var storedRecordSchema = func() map[string]any {
	props := map[string]any{"id": map[string]any{"type": "integer"}}
	for k, v := range logRecordSchema["properties"].(map[string]any) {
		props[k] = v
	}
	return map[string]any{"type": "object", "properties": props}
}()

func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "DrTrace Daemon API",
			"version": h.version,
		},
		"paths": map[string]any{
			"/status": map[string]any{
				"get": map[string]any{
					"summary": "Service metadata for liveness probing",
				},
			},
			"/openapi.json": map[string]any{
				"get": map[string]any{
					"summary": "This document",
				},
			},
			"/logs/ingest": map[string]any{
				"post": map[string]any{
					"summary": "Ingest a batch of log records",
					"requestBody": map[string]any{
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"application_id": map[string]any{"type": "string"},
										"logs": map[string]any{
											"type":  "array",
											"items": logRecordSchema,
										},
									},
								},
							},
						},
					},
					"responses": map[string]any{
						"202": map[string]any{"description": "accepted count"},
						"422": map[string]any{"description": "validation error"},
					},
				},
			},
			"/logs/query": map[string]any{
				"get": map[string]any{
					"summary": "Query stored log records",
					"parameters": []map[string]any{
						{"name": "start_ts", "in": "query", "required": true, "schema": map[string]any{"type": "number"}},
						{"name": "end_ts", "in": "query", "required": true, "schema": map[string]any{"type": "number"}},
						{"name": "application_id", "in": "query", "required": false, "schema": map[string]any{"type": "string"}},
						{"name": "module_name", "in": "query", "required": false, "schema": map[string]any{"type": "string"}},
						{"name": "min_level", "in": "query", "required": false, "schema": map[string]any{"type": "string"}},
						{"name": "message_contains", "in": "query", "required": false, "schema": map[string]any{"type": "string"}},
						{"name": "message_regex", "in": "query", "required": false, "schema": map[string]any{"type": "string", "maxLength": 500}},
						{"name": "limit", "in": "query", "required": false, "schema": map[string]any{"type": "integer", "default": 100, "maximum": 1000}},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "matching records",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"results": map[string]any{"type": "array", "items": storedRecordSchema},
											"count":   map[string]any{"type": "integer"},
										},
									},
								},
							},
						},
						"400": map[string]any{"description": "INVALID_PARAMS, INVALID_TIME_RANGE, INVALID_LEVEL, or INVALID_TIME_FORMAT"},
					},
				},
			},
			"/logs/clear": map[string]any{
				"post": map[string]any{
					"summary": "Administrative purge of all records for an application_id",
					"parameters": []map[string]any{
						{"name": "application_id", "in": "query", "required": true, "schema": map[string]any{"type": "string"}},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"LogRecord":    logRecordSchema,
				"StoredRecord": storedRecordSchema,
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"detail": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"code":    map[string]any{"type": "string"},
								"message": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
