package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// WriteJSON writes v as a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the JSON envelope of every failed request.
type ErrorBody struct {
	Type      string `json:"type"`
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// Classify maps an error to its HTTP status, a machine-checkable type and
// the message shown to the client.
func Classify(err error) (status int, kind, message string) {
	var (
		validation *models.ValidationError
		notFound   *models.NotFoundError
		aborted    *models.TransactionAbortedError
		conn       *models.ConnectivityError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "validation_error", validation.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found", notFound.Error()
	case errors.As(err, &conn):
		return http.StatusServiceUnavailable, "connectivity_error", "database unavailable"
	case errors.As(err, &aborted):
		return http.StatusInternalServerError, "transaction_aborted", aborted.Error()
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}

// WriteError renders err using the error envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, message := Classify(err)

	body := ErrorBody{
		Type:      kind,
		Error:     message,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: logger.RequestID(r.Context()),
	}
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		body.Field = validation.Field
	}

	WriteJSON(w, status, body)
}

// WriteStatus renders a plain failure that has no domain error behind it.
func WriteStatus(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	WriteJSON(w, status, ErrorBody{
		Type:      kind,
		Error:     message,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: logger.RequestID(r.Context()),
	})
}

// DecodeJSON decodes the request body into dst. Malformed bodies become
// validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("body", "request body is required")
		}
		return models.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// QueryInt reads a non-negative integer query parameter, returning def when
// it is absent.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, models.NewValidationError(key, "must be a non-negative integer")
	}
	return n, nil
}
