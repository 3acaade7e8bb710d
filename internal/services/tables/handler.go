package tables

import (
	"context"
	"net/http"
	"time"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
)

// Handler handles HTTP requests for the table occupancy view
type Handler struct {
	service *Service
	logger  *logger.Logger
	timeout time.Duration
}

func NewHandler(service *Service, log *logger.Logger, timeout time.Duration) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		timeout: timeout,
	}
}

// ListTables handles GET /tables requests
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	tables, err := h.service.ListTables(ctx)
	if err != nil {
		h.logger.Error("db_query_failed", "Failed to list tables", requestID, err, nil)
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tables": tables})
}
