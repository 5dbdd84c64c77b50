// Package storefront holds the customer-facing JSON handlers.
package storefront

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/handler"
	"github.com/rcabrera/tindahan/internal/service"
)

// CartHandler handles cart routes.
type CartHandler struct {
	carts  service.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{carts: carts, logger: logger}
}

type addItemRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	ProductID  uuid.UUID `json:"productId" validate:"required"`
	Quantity   int32     `json:"quantity" validate:"required,gt=0"`
}

// Add handles POST /api/cart.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	cart, err := h.carts.AddItem(r.Context(), req.CustomerID, req.ProductID, req.Quantity)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}

// Get handles GET /api/cart/{customerID}.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, err := handler.PathUUID(r, "customerID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	cart, err := h.carts.GetActiveCart(r.Context(), customerID)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}

type cartItemRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	ProductID  uuid.UUID `json:"productId" validate:"required"`
}

// Remove handles DELETE /api/cart/item.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), req.CustomerID, req.ProductID)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}

type setQuantityRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	ProductID  uuid.UUID `json:"productId" validate:"required"`
	Quantity   int32     `json:"quantity" validate:"required,gt=0"`
}

// SetQuantity handles PATCH /api/cart/item.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	cart, err := h.carts.SetQuantity(r.Context(), req.CustomerID, req.ProductID, req.Quantity)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart)
}
