package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order-related domain errors.
var (
	ErrOrderNotFound          = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrCannotCancelCompleted  = &Error{Code: EINVALID, Message: "Cannot cancel completed orders"}
	ErrNotOrderOwner          = &Error{Code: EFORBIDDEN, Message: "Unauthorized"}
	ErrInvalidDeliveryType    = &Error{Code: EINVALID, Message: "Delivery type must be either 'pickup' or 'delivery'"}
	ErrInvalidPaymentMethod   = &Error{Code: EINVALID, Message: "Payment method must be either 'gcash' or 'cash'"}
	ErrMissingDeliveryDetails = &Error{Code: EINVALID, Message: "Delivery address and contact number are required for delivery orders"}
)

// DeliveryType selects how the customer receives the order.
type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "pickup"
	DeliveryTypeDelivery DeliveryType = "delivery"
)

// Valid reports whether dt is a known delivery type.
func (dt DeliveryType) Valid() bool {
	return dt == DeliveryTypePickup || dt == DeliveryTypeDelivery
}

// PaymentMethod is recorded at checkout, not processed.
type PaymentMethod string

const (
	PaymentMethodGCash PaymentMethod = "gcash"
	PaymentMethodCash  PaymentMethod = "cash"
)

// Valid reports whether pm is a known payment method.
func (pm PaymentMethod) Valid() bool {
	return pm == PaymentMethodGCash || pm == PaymentMethodCash
}

// OrderStatus is a state in the order lifecycle.
//
//	pending -> ready_for_pickup  (pickup orders)
//	pending -> out_for_delivery  (delivery orders)
//	ready_for_pickup | out_for_delivery -> completed
//	pending -> cancelled                  (customer)
//	any non-completed -> cancelled        (admin)
//
// completed and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// ActiveOrderStatuses are the states a customer still has an order in flight.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusReadyForPickup,
	OrderStatusOutForDelivery,
}

// HistoryOrderStatuses are the terminal states shown in purchase history.
var HistoryOrderStatuses = []OrderStatus{
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Order is an immutable snapshot created at checkout. Customer fields and
// line items are denormalized copies frozen at checkout time; only status,
// notes and notifications change afterwards.
type Order struct {
	ID uuid.UUID `json:"id"`

	CustomerID    uuid.UUID `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerPhone string    `json:"customerPhone,omitempty"`

	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`

	DeliveryType          DeliveryType `json:"deliveryType"`
	DeliveryAddress       string       `json:"deliveryAddress,omitempty"`
	DeliveryContactNumber string       `json:"deliveryContactNumber,omitempty"`
	DeliveryNotes         string       `json:"deliveryNotes,omitempty"`

	PaymentMethod PaymentMethod `json:"paymentMethod"`

	Status        OrderStatus    `json:"status"`
	Notifications []Notification `json:"notifications"`
	AdminNotes    string         `json:"adminNotes,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Reference is the short order handle used in customer-facing messages,
// the last six characters of the order ID.
func (o *Order) Reference() string {
	s := o.ID.String()
	return s[len(s)-6:]
}

// OrderItem is a value-type snapshot of one cart line at checkout: product
// name and price are frozen copies, immune to later catalog edits, and the
// subtotal is computed once and never recomputed.
type OrderItem struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int32           `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// Notification is one customer-facing status message, append-only within an
// order and independently markable as read.
type Notification struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"orderId"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
	Read    bool      `json:"read"`
}

// CustomerNotification is a notification joined with its order's current
// status, as served by the customer notifications feed.
type CustomerNotification struct {
	OrderID     uuid.UUID   `json:"orderId"`
	Message     string      `json:"message"`
	SentAt      time.Time   `json:"sentAt"`
	Read        bool        `json:"read"`
	OrderStatus OrderStatus `json:"orderStatus"`
}

// OrderFilter narrows order listings. Zero-value fields are ignored.
type OrderFilter struct {
	CustomerID   *uuid.UUID
	Statuses     []OrderStatus
	DeliveryType *DeliveryType
}

// OrderStatistics aggregates counts and revenue for the admin dashboard.
type OrderStatistics struct {
	Total          int64           `json:"total"`
	Pending        int64           `json:"pending"`
	ReadyForPickup int64           `json:"readyForPickup"`
	OutForDelivery int64           `json:"outForDelivery"`
	Completed      int64           `json:"completed"`
	Cancelled      int64           `json:"cancelled"`
	Pickup         int64           `json:"pickup"`
	Delivery       int64           `json:"delivery"`
	GCashPayments  int64           `json:"gcashPayments"`
	CashPayments   int64           `json:"cashPayments"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

// OrderStore persists orders, their frozen line items and their notifications.
type OrderStore interface {
	// CreateOrder inserts the order with its items.
	CreateOrder(ctx context.Context, o *Order) error

	// DeleteOrder removes an order entirely. Only used as the compensating
	// step when checkout hits a late stock race after creating the order.
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// GetOrder returns the order with items and notifications, or
	// ErrOrderNotFound.
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListOrders returns orders matching the filter, newest first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)

	// SetOrderStatus updates the status, and completedAt when non-nil.
	SetOrderStatus(ctx context.Context, id uuid.UUID, status OrderStatus, completedAt *time.Time) error

	// SetAdminNotes replaces the admin notes without touching status.
	SetAdminNotes(ctx context.Context, id uuid.UUID, notes string) error

	// AppendNotification atomically appends one notification to the order.
	// Concurrent appends from the admin surface and the state machine must
	// both land; implementations insert rather than rewriting the list.
	AppendNotification(ctx context.Context, orderID uuid.UUID, message string) (*Notification, error)

	// MarkNotificationsRead marks every notification on the order as read.
	// Idempotent: a second call is a no-op, not an error.
	MarkNotificationsRead(ctx context.Context, orderID uuid.UUID) error

	// ListCustomerNotifications returns all notifications across the
	// customer's orders, newest first.
	ListCustomerNotifications(ctx context.Context, customerID uuid.UUID) ([]CustomerNotification, error)

	// GetOrderStatistics aggregates counts and completed-order revenue.
	GetOrderStatistics(ctx context.Context) (*OrderStatistics, error)
}
