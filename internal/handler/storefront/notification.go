package storefront

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/handler"
	"github.com/rcabrera/tindahan/internal/service"
)

// NotificationHandler serves the customer notifications feed.
type NotificationHandler struct {
	orders service.OrderService
	logger *slog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(orders service.OrderService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{orders: orders, logger: logger}
}

// List handles GET /api/orders/notifications/{customerID}.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, err := handler.PathUUID(r, "customerID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	notifications, err := h.orders.ListNotifications(r.Context(), customerID)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	if notifications == nil {
		notifications = []domain.CustomerNotification{}
	}
	handler.JSON(w, http.StatusOK, notifications)
}

type markReadRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

// MarkRead handles PUT /api/orders/notifications/read. Calling it twice is
// fine; the second call changes nothing.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	if err := h.orders.MarkNotificationsRead(r.Context(), req.OrderID); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]string{"message": "Notifications marked as read"})
}
