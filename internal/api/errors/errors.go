package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Code is a structured API error code.
type Code string

const (
	CodeInvalidParams     Code = "INVALID_PARAMS"
	CodeInvalidTimeRange  Code = "INVALID_TIME_RANGE"
	CodeInvalidLevel      Code = "INVALID_LEVEL"
	CodeInvalidTimeFormat Code = "INVALID_TIME_FORMAT"
	CodeInvalidQueryType  Code = "INVALID_QUERY_TYPE"
	CodeQueryNotFound     Code = "QUERY_NOT_FOUND"
	CodeValidationError   Code = "VALIDATION_ERROR"
	CodeInternalError     Code = "INTERNAL_ERROR"
)

// APIError is a structured error, rendered under a "detail" envelope.
type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// errorResponse matches the wire shape `{"detail": {"code": ..., "message": ...}}`.
type errorResponse struct {
	Detail APIError `json:"detail"`
}

// New creates an APIError for the given code and message.
func New(code Code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// StatusCode maps a Code to its HTTP status.
func (e *APIError) StatusCode() int {
	switch e.Code {
	case CodeInvalidParams, CodeInvalidTimeRange, CodeInvalidLevel, CodeInvalidTimeFormat, CodeInvalidQueryType:
		return http.StatusBadRequest
	case CodeValidationError:
		return http.StatusUnprocessableEntity
	case CodeQueryNotFound:
		return http.StatusNotFound
	case CodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a JSON response under the {"detail": {...}} envelope.
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	json.NewEncoder(w).Encode(errorResponse{Detail: *err})
}

// InvalidParams creates an INVALID_PARAMS error.
func InvalidParams(message string) *APIError { return New(CodeInvalidParams, message) }

// InvalidTimeRange creates an INVALID_TIME_RANGE error.
func InvalidTimeRange(message string) *APIError { return New(CodeInvalidTimeRange, message) }

// InvalidLevel creates an INVALID_LEVEL error.
func InvalidLevel(message string) *APIError { return New(CodeInvalidLevel, message) }

// InvalidTimeFormat creates an INVALID_TIME_FORMAT error.
func InvalidTimeFormat(message string) *APIError { return New(CodeInvalidTimeFormat, message) }

// InvalidQueryType creates an INVALID_QUERY_TYPE error.
func InvalidQueryType(message string) *APIError { return New(CodeInvalidQueryType, message) }

// QueryNotFound creates a QUERY_NOT_FOUND error.
func QueryNotFound(message string) *APIError { return New(CodeQueryNotFound, message) }

// Validation creates a VALIDATION_ERROR error, used for 422 ingest rejections.
func Validation(message string) *APIError { return New(CodeValidationError, message) }

// Internal creates an INTERNAL_ERROR error.
func Internal(message string) *APIError { return New(CodeInternalError, message) }
