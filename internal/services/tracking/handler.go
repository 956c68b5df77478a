package tracking

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/models"
	"restaurant-kds/internal/server"
)

// Handler handles HTTP requests for the tracking service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new tracking handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/order/{id}", h.GetOrder)
	r.Get("/api/orders/active", h.ListActive)
}

// GetOrder handles GET /api/order/{id} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		server.WriteError(w, http.StatusBadRequest, "Invalid order id", requestID)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		if models.IsNotFound(err) {
			server.WriteError(w, http.StatusNotFound, "Order not found", requestID)
			return
		}
		h.logger.Error("db_query_failed", "Failed to get order", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		server.WriteError(w, http.StatusInternalServerError, "Server error", requestID)
		return
	}

	if err := server.WriteJSON(w, http.StatusOK, server.DataResponse{Success: true, Data: order}); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// ListActive handles GET /api/orders/active requests
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	orders, err := h.service.ListActive(r.Context())
	if err != nil {
		h.logger.Error("db_query_failed", "Failed to list active orders", requestID, err, nil)
		server.WriteError(w, http.StatusInternalServerError, "Server error", requestID)
		return
	}

	if err := server.WriteJSON(w, http.StatusOK, server.DataResponse{Success: true, Data: orders}); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}
