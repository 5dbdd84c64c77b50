package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/events"
)

// Customer-facing notification wording, keyed by the short order reference.
const (
	msgReadyForPickup = "Your order #%s is ready for pickup! Please collect it at your earliest convenience."
	msgOutForDelivery = "Your order #%s is out for delivery! It will arrive soon."
	msgCompleted      = "Your order #%s has been completed. Thank you for your purchase!"
	msgCancelled      = "Order #%s has been cancelled. Reason: %s"
)

// OrderService drives the order lifecycle after checkout: fulfillment
// transitions, cancellation with stock restoration, notifications and
// listings.
type OrderService interface {
	// GetOrder returns one order.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)

	// ListCustomerOrders returns all of the customer's orders, newest first.
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)

	// ListActiveOrders returns the customer's in-flight orders.
	ListActiveOrders(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)

	// ListOrderHistory returns the customer's completed and cancelled orders.
	ListOrderHistory(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)

	// CancelByCustomer cancels a pending order on behalf of its owner and
	// restores the ordered quantities to stock.
	CancelByCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*domain.Order, error)

	// ListOrders returns orders matching the admin filter, newest first.
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	// GetStatistics aggregates order counts and revenue for the dashboard.
	GetStatistics(ctx context.Context) (*domain.OrderStatistics, error)

	// MarkReadyForPickup transitions a pending pickup order and notifies
	// the customer.
	MarkReadyForPickup(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error)

	// MarkOutForDelivery transitions a pending delivery order and notifies
	// the customer.
	MarkOutForDelivery(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error)

	// CompleteOrder finishes a ready or out-for-delivery order, stamps
	// completedAt and notifies the customer.
	CompleteOrder(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error)

	// CancelByAdmin cancels any non-completed order, restores stock and
	// notifies the customer with the given reason.
	CancelByAdmin(ctx context.Context, orderID uuid.UUID, reason, adminNotes string) (*domain.Order, error)

	// UpdateNotes attaches admin notes without a status transition.
	UpdateNotes(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error)

	// ListNotifications returns notifications across all the customer's
	// orders, newest first.
	ListNotifications(ctx context.Context, customerID uuid.UUID) ([]domain.CustomerNotification, error)

	// MarkNotificationsRead marks every notification on the order read.
	// Idempotent.
	MarkNotificationsRead(ctx context.Context, orderID uuid.UUID) error
}

type orderService struct {
	orders    domain.OrderStore
	products  domain.ProductStore
	publisher events.Publisher
	logger    *slog.Logger
}

// NewOrderService creates the order lifecycle service.
func NewOrderService(orders domain.OrderStore, products domain.ProductStore, publisher events.Publisher, logger *slog.Logger) OrderService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &orderService{
		orders:    orders,
		products:  products,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.GetOrder(ctx, orderID)
}

func (s *orderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, domain.OrderFilter{CustomerID: &customerID})
}

func (s *orderService) ListActiveOrders(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, domain.OrderFilter{
		CustomerID: &customerID,
		Statuses:   domain.ActiveOrderStatuses,
	})
}

func (s *orderService) ListOrderHistory(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, domain.OrderFilter{
		CustomerID: &customerID,
		Statuses:   domain.HistoryOrderStatuses,
	})
}

func (s *orderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx, filter)
}

func (s *orderService) GetStatistics(ctx context.Context) (*domain.OrderStatistics, error) {
	return s.orders.GetOrderStatistics(ctx)
}

// CancelByCustomer allows the owning customer to back out of an order that
// has not entered fulfillment. Stock is restored before the status flips, so
// a crash in between leaves extra stock rather than a cancelled order that
// still holds inventory.
func (s *orderService) CancelByCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, domain.ErrNotOrderOwner
	}
	if order.Status != domain.OrderStatusPending {
		return nil, ErrCannotCancelAtStage
	}

	if err := s.restoreStock(ctx, order); err != nil {
		return nil, err
	}
	if err := s.orders.SetOrderStatus(ctx, orderID, domain.OrderStatusCancelled, nil); err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled by customer", "order_id", orderID, "customer_id", customerID)
	s.publishStatus(ctx, order, domain.OrderStatusCancelled, "")
	return s.orders.GetOrder(ctx, orderID)
}

func (s *orderService) MarkReadyForPickup(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error) {
	return s.transition(ctx, orderID, adminNotes, func(order *domain.Order) (string, error) {
		if order.DeliveryType != domain.DeliveryTypePickup {
			return "", ErrPickupOrdersOnly
		}
		if order.Status != domain.OrderStatusPending {
			return "", ErrOrderNotPending
		}
		return fmt.Sprintf(msgReadyForPickup, order.Reference()), nil
	}, domain.OrderStatusReadyForPickup, false)
}

func (s *orderService) MarkOutForDelivery(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error) {
	return s.transition(ctx, orderID, adminNotes, func(order *domain.Order) (string, error) {
		if order.DeliveryType != domain.DeliveryTypeDelivery {
			return "", ErrDeliveryOrdersOnly
		}
		if order.Status != domain.OrderStatusPending {
			return "", ErrOrderNotPending
		}
		return fmt.Sprintf(msgOutForDelivery, order.Reference()), nil
	}, domain.OrderStatusOutForDelivery, false)
}

func (s *orderService) CompleteOrder(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error) {
	return s.transition(ctx, orderID, adminNotes, func(order *domain.Order) (string, error) {
		if order.Status != domain.OrderStatusReadyForPickup && order.Status != domain.OrderStatusOutForDelivery {
			return "", ErrOrderNotFulfillable
		}
		return fmt.Sprintf(msgCompleted, order.Reference()), nil
	}, domain.OrderStatusCompleted, true)
}

// CancelByAdmin cancels any non-completed order, restoring the ordered
// quantities to stock and recording the reason for the customer.
func (s *orderService) CancelByAdmin(ctx context.Context, orderID uuid.UUID, reason, adminNotes string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCompleted {
		return nil, domain.ErrCannotCancelCompleted
	}

	if err := s.restoreStock(ctx, order); err != nil {
		return nil, err
	}

	notes := adminNotes
	if notes == "" {
		notes = reason
	}
	if notes == "" {
		notes = "Cancelled by admin"
	}
	if err := s.orders.SetAdminNotes(ctx, orderID, notes); err != nil {
		return nil, err
	}
	if err := s.orders.SetOrderStatus(ctx, orderID, domain.OrderStatusCancelled, nil); err != nil {
		return nil, err
	}

	cancellationReason := reason
	if cancellationReason == "" {
		cancellationReason = "your order has been cancelled"
	}
	message := fmt.Sprintf(msgCancelled, order.Reference(), cancellationReason)
	if _, err := s.orders.AppendNotification(ctx, orderID, message); err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled by admin", "order_id", orderID, "reason", reason)
	s.publishStatus(ctx, order, domain.OrderStatusCancelled, message)
	return s.orders.GetOrder(ctx, orderID)
}

func (s *orderService) UpdateNotes(ctx context.Context, orderID uuid.UUID, adminNotes string) (*domain.Order, error) {
	if err := s.orders.SetAdminNotes(ctx, orderID, adminNotes); err != nil {
		return nil, err
	}
	return s.orders.GetOrder(ctx, orderID)
}

func (s *orderService) ListNotifications(ctx context.Context, customerID uuid.UUID) ([]domain.CustomerNotification, error) {
	return s.orders.ListCustomerNotifications(ctx, customerID)
}

func (s *orderService) MarkNotificationsRead(ctx context.Context, orderID uuid.UUID) error {
	return s.orders.MarkNotificationsRead(ctx, orderID)
}

// transition runs one guarded status change: check produces the notification
// message or the guard error, then the status flips, notes attach when given
// and the customer is notified.
func (s *orderService) transition(
	ctx context.Context,
	orderID uuid.UUID,
	adminNotes string,
	check func(*domain.Order) (string, error),
	target domain.OrderStatus,
	stampCompleted bool,
) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	message, err := check(order)
	if err != nil {
		return nil, err
	}

	var completedAt *time.Time
	if stampCompleted {
		now := time.Now()
		completedAt = &now
	}
	if err := s.orders.SetOrderStatus(ctx, orderID, target, completedAt); err != nil {
		return nil, err
	}
	if adminNotes != "" {
		if err := s.orders.SetAdminNotes(ctx, orderID, adminNotes); err != nil {
			return nil, err
		}
	}
	if _, err := s.orders.AppendNotification(ctx, orderID, message); err != nil {
		return nil, err
	}

	s.logger.Info("order status changed", "order_id", orderID, "status", target)
	s.publishStatus(ctx, order, target, message)
	return s.orders.GetOrder(ctx, orderID)
}

// restoreStock releases every line's quantity back to inventory. Increments
// cannot fail the floor invariant, so there is no compensation path here.
func (s *orderService) restoreStock(ctx context.Context, order *domain.Order) error {
	for _, it := range order.Items {
		if err := s.products.ReleaseStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.logger.Error("failed to restore stock",
				"order_id", order.ID, "product_id", it.ProductID, "error", err)
			return err
		}
	}
	return nil
}

// publishStatus fans the change out to connected sessions. Delivery is best
// effort; a broker hiccup never fails the transition.
func (s *orderService) publishStatus(ctx context.Context, order *domain.Order, status domain.OrderStatus, message string) {
	ev := events.OrderStatusEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     status,
		Message:    message,
		SentAt:     time.Now(),
	}
	if err := s.publisher.PublishOrderStatus(ctx, ev); err != nil {
		s.logger.Warn("failed to publish order status event", "order_id", order.ID, "error", err)
	}
}
