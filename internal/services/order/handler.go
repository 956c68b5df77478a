package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/models"
	"restaurant-kds/internal/server"
)

const (
	createTimeout = 30 * time.Second

	msgOrderFailed  = "order could not be recorded"
	msgOrderCreated = "Order created successfully"
	msgServerError  = "Server error"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/order", h.CreateOrder)
	r.Post("/api/order/status", h.UpdateStatus)
}

// CreateOrder handles POST /api/order requests. Every failure gets the same
// client message; the cause stays in the server log.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	var req models.CreateOrderRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		server.WriteError(w, http.StatusInternalServerError, msgOrderFailed, requestID)
		return
	}

	h.logger.Debug("order_received", "Received order creation request", requestID, map[string]interface{}{
		"table_number": req.TableNumber,
		"items":        len(req.Items),
	})

	ctx, cancel := context.WithTimeout(r.Context(), createTimeout)
	defer cancel()

	order, err := h.service.CreateOrder(ctx, &req)
	if err != nil {
		h.logger.Error("order_creation_failed", "Failed to create order", requestID, err, map[string]interface{}{
			"table_number": req.TableNumber,
			"kind":         failureKind(err),
		})
		server.WriteError(w, http.StatusInternalServerError, msgOrderFailed, requestID)
		return
	}

	response := models.CreateOrderResponse{
		Success:     true,
		Message:     msgOrderCreated,
		OrderID:     order.ID,
		TotalAmount: models.Amount(order.TotalAmount),
	}
	if err := server.WriteJSON(w, http.StatusCreated, response); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// UpdateStatus handles POST /api/order/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	var req models.UpdateStatusRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		server.WriteError(w, http.StatusInternalServerError, "Invalid request body", requestID)
		return
	}

	update, err := h.service.UpdateStatus(r.Context(), req.OrderID, req.Status)
	if err != nil {
		h.logger.Error("status_update_failed", "Failed to update order status", requestID, err, map[string]interface{}{
			"order_id": req.OrderID,
			"status":   req.Status,
			"kind":     failureKind(err),
		})
		server.WriteError(w, http.StatusInternalServerError, statusFailureMessage(err), requestID)
		return
	}

	response := server.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Order %d status updated to %s", update.OrderID, update.Status),
	}
	if err := server.WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

func statusFailureMessage(err error) string {
	var validationErr *models.ValidationError
	switch {
	case models.IsNotFound(err):
		return "Order not found"
	case errors.As(err, &validationErr):
		return validationErr.Error()
	default:
		return msgServerError
	}
}

func failureKind(err error) string {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Kind
	case models.IsNotFound(err):
		return "not_found"
	case models.IsStorage(err):
		return "storage"
	default:
		return "unknown"
	}
}
