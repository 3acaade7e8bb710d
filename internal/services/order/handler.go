package order

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler handles HTTP requests for orders
type Handler struct {
	service *Service
	logger  *logger.Logger
	timeout time.Duration
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger, timeout time.Duration) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		timeout: timeout,
	}
}

// PlaceOrder handles POST /orders requests
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	h.logger.Debug("order_received", "Received order placement request", requestID, map[string]any{
		"content_length": r.ContentLength,
		"remote_addr":    r.RemoteAddr,
	})

	var req models.PlaceOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		httpx.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.service.PlaceOrder(ctx, &req)
	if err != nil {
		h.logFailure("order_placement_failed", "Failed to place order", requestID, err, map[string]any{
			"table": string(req.Table),
			"items": len(req.Items),
		})
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"order": order})
}

// GetOrder handles GET /orders/{id} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, r, models.NewValidationError("id", "order id must be a positive integer"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.service.GetOrder(ctx, id)
	if err != nil {
		h.logFailure("order_lookup_failed", "Failed to get order", requestID, err, map[string]any{"order_id": id})
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) logFailure(action, message, requestID string, err error, fields map[string]any) {
	if IsClientError(err) {
		h.logger.Debug(action, err.Error(), requestID, fields)
		return
	}
	h.logger.Error(action, message, requestID, err, fields)
}
