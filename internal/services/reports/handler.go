package reports

import (
	"context"
	"net/http"
	"strings"
	"time"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler handles HTTP requests for the reports
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

func (h *Handler) dateRange(r *http.Request) (models.DateRange, error) {
	q := r.URL.Query()
	return models.ParseDateRange(strings.TrimSpace(q.Get("dateStart")), strings.TrimSpace(q.Get("dateEnd")), h.service.Location())
}

// Sales handles GET /reports/sales requests
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	dates, err := h.dateRange(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit", DefaultSalesLimit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	offset, err := httpx.QueryInt(r, "offset", 0)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.SalesFilter{
		Dates:    dates,
		Table:    strings.TrimSpace(q.Get("table")),
		Product:  strings.TrimSpace(q.Get("product")),
		Category: strings.TrimSpace(q.Get("category")),
		Limit:    limit,
		Offset:   offset,
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report, err := h.service.SalesReport(ctx, filter)
	if err != nil {
		h.logger.Error("report_failed", "Failed to build sales report", logger.RequestID(r.Context()), err, nil)
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, report)
}

// PopularProducts handles GET /reports/popular-products requests
func (h *Handler) PopularProducts(w http.ResponseWriter, r *http.Request) {
	dates, err := h.dateRange(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit", DefaultPopularLimit)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.service.PopularProducts(ctx, dates, limit)
	if err != nil {
		h.logger.Error("report_failed", "Failed to build popular products report", logger.RequestID(r.Context()), err, nil)
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"products": products})
}

// Tables handles GET /reports/tables requests
func (h *Handler) Tables(w http.ResponseWriter, r *http.Request) {
	dates, err := h.dateRange(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	tables, err := h.service.TableSales(ctx, dates)
	if err != nil {
		h.logger.Error("report_failed", "Failed to build table report", logger.RequestID(r.Context()), err, nil)
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

// Dashboard handles GET /reports/dashboard requests
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.service.Dashboard(ctx)
	if err != nil {
		h.logger.Error("report_failed", "Failed to build dashboard", logger.RequestID(r.Context()), err, nil)
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"statistics": snap})
}
