package storefront

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/handler"
	"github.com/rcabrera/tindahan/internal/service"
)

// OrderHandler handles checkout and the customer's order routes.
type OrderHandler struct {
	checkout service.CheckoutService
	orders   service.OrderService
	logger   *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(checkout service.CheckoutService, orders service.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{checkout: checkout, orders: orders, logger: logger}
}

type checkoutRequest struct {
	CustomerID            uuid.UUID `json:"customerId" validate:"required"`
	DeliveryType          string    `json:"deliveryType" validate:"required"`
	PaymentMethod         string    `json:"paymentMethod" validate:"required"`
	DeliveryAddress       string    `json:"deliveryAddress"`
	DeliveryContactNumber string    `json:"deliveryContactNumber"`
	DeliveryNotes         string    `json:"deliveryNotes"`
	CustomerPhone         string    `json:"customerPhone"`
}

// Checkout handles POST /api/orders/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	order, err := h.checkout.Checkout(r.Context(), service.CheckoutParams{
		CustomerID:            req.CustomerID,
		DeliveryType:          domain.DeliveryType(req.DeliveryType),
		PaymentMethod:         domain.PaymentMethod(req.PaymentMethod),
		DeliveryAddress:       req.DeliveryAddress,
		DeliveryContactNumber: req.DeliveryContactNumber,
		DeliveryNotes:         req.DeliveryNotes,
		CustomerPhone:         req.CustomerPhone,
	})
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusCreated, order)
}

// Get handles GET /api/orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := handler.PathUUID(r, "orderID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, order)
}

// List handles GET /api/orders/customer/{customerID}.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.orders.ListCustomerOrders)
}

// ListActive handles GET /api/orders/customer/{customerID}/active.
func (h *OrderHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.orders.ListActiveOrders)
}

// ListHistory handles GET /api/orders/customer/{customerID}/history.
func (h *OrderHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.orders.ListOrderHistory)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)) {
	customerID, err := handler.PathUUID(r, "customerID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	orders, err := fn(r.Context(), customerID)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	handler.JSON(w, http.StatusOK, orders)
}

type cancelOrderRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
}

// Cancel handles PUT /api/orders/{orderID}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := handler.PathUUID(r, "orderID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	var req cancelOrderRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	order, err := h.orders.CancelByCustomer(r.Context(), orderID, req.CustomerID)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, order)
}
