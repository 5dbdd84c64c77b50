// Package admin holds the store-operator JSON handlers.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/handler"
	"github.com/rcabrera/tindahan/internal/service"
)

// OrderHandler handles fulfillment and order-management routes.
type OrderHandler struct {
	orders service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new admin order handler.
func NewOrderHandler(orders service.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{orders: orders, logger: logger}
}

// List handles GET /api/admin/orders?status=&deliveryType=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.OrderFilter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Statuses = []domain.OrderStatus{domain.OrderStatus(status)}
	}
	if dt := r.URL.Query().Get("deliveryType"); dt != "" {
		deliveryType := domain.DeliveryType(dt)
		if !deliveryType.Valid() {
			handler.Error(w, r, h.logger, domain.ErrInvalidDeliveryType)
			return
		}
		filter.DeliveryType = &deliveryType
	}
	h.list(w, r, filter)
}

// ListPending handles GET /api/admin/orders/pending.
func (h *OrderHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.OrderFilter{
		Statuses: []domain.OrderStatus{domain.OrderStatusPending},
	})
}

// ListPickupQueue handles GET /api/admin/orders/pickup: pickup orders still
// to be handed over.
func (h *OrderHandler) ListPickupQueue(w http.ResponseWriter, r *http.Request) {
	pickup := domain.DeliveryTypePickup
	h.list(w, r, domain.OrderFilter{
		Statuses:     []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusReadyForPickup},
		DeliveryType: &pickup,
	})
}

// ListDeliveryQueue handles GET /api/admin/orders/delivery: delivery orders
// still on the road or waiting for dispatch.
func (h *OrderHandler) ListDeliveryQueue(w http.ResponseWriter, r *http.Request) {
	delivery := domain.DeliveryTypeDelivery
	h.list(w, r, domain.OrderFilter{
		Statuses:     []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusOutForDelivery},
		DeliveryType: &delivery,
	})
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, filter domain.OrderFilter) {
	orders, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	handler.JSON(w, http.StatusOK, orders)
}

// Statistics handles GET /api/admin/orders/statistics.
func (h *OrderHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.GetStatistics(r.Context())
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, stats)
}

// Get handles GET /api/admin/orders/{orderID}.
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

type transitionRequest struct {
	AdminNotes string `json:"adminNotes"`
}

// MarkReadyForPickup handles PUT /api/admin/orders/{orderID}/ready-for-pickup.
func (h *OrderHandler) MarkReadyForPickup(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkReadyForPickup)
}

// MarkOutForDelivery handles PUT /api/admin/orders/{orderID}/out-for-delivery.
func (h *OrderHandler) MarkOutForDelivery(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.MarkOutForDelivery)
}

// Complete handles PUT /api/admin/orders/{orderID}/complete.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.CompleteOrder)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error)) {
	orderID, err := handler.PathUUID(r, "orderID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	var req transitionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := handler.Bind(r, &req); err != nil {
			handler.Error(w, r, h.logger, err)
			return
		}
	}

	order, err := fn(r.Context(), orderID, req.AdminNotes)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, order)
}

type cancelRequest struct {
	Reason     string `json:"reason"`
	AdminNotes string `json:"adminNotes"`
}

// Cancel handles PUT /api/admin/orders/{orderID}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := handler.PathUUID(r, "orderID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	var req cancelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := handler.Bind(r, &req); err != nil {
			handler.Error(w, r, h.logger, err)
			return
		}
	}

	order, err := h.orders.CancelByAdmin(r.Context(), orderID, req.Reason, req.AdminNotes)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, order)
}

type notesRequest struct {
	AdminNotes string `json:"adminNotes" validate:"required"`
}

// UpdateNotes handles PUT /api/admin/orders/{orderID}/notes.
func (h *OrderHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	orderID, err := handler.PathUUID(r, "orderID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	var req notesRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	order, err := h.orders.UpdateNotes(r.Context(), orderID, req.AdminNotes)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, order)
}
