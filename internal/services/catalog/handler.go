package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/models"
	"restaurant-kds/internal/server"
)

// MenuLister is the read side the menu endpoint needs
type MenuLister interface {
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
}

// MenuItemView is one menu entry on the wire
type MenuItemView struct {
	ItemID      int64       `json:"item_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
}

// Handler serves the menu
type Handler struct {
	menu   MenuLister
	logger *logger.Logger
}

func NewHandler(menu MenuLister, log *logger.Logger) *Handler {
	return &Handler{menu: menu, logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/menu", h.GetMenu)
}

// GetMenu handles GET /api/menu requests
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	items, err := h.menu.ListAvailable(r.Context())
	if err != nil {
		h.logger.Error("menu_query_failed", "Failed to list menu", requestID, err, nil)
		server.WriteError(w, http.StatusInternalServerError, "Server error", requestID)
		return
	}

	views := make([]MenuItemView, 0, len(items))
	for _, item := range items {
		views = append(views, MenuItemView{
			ItemID:      item.ItemID,
			Name:        item.Name,
			Description: item.Description,
			Price:       models.Amount(item.Price),
		})
	}

	if err := server.WriteJSON(w, http.StatusOK, server.DataResponse{Success: true, Data: views}); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}
