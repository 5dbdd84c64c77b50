// Package events publishes storefront events for live delivery to connected
// clients. Order status changes and chat messages fan out over a message
// broker; HTTP responses never wait on delivery.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
)

// OrderStatusEvent announces an order lifecycle change to the customer.
type OrderStatusEvent struct {
	OrderID    uuid.UUID          `json:"orderId"`
	CustomerID uuid.UUID          `json:"customerId"`
	Status     domain.OrderStatus `json:"status"`
	Message    string             `json:"message"`
	SentAt     time.Time          `json:"sentAt"`
}

// ChatMessageEvent announces a new chat message to both sides of the
// conversation.
type ChatMessageEvent struct {
	ChatID     uuid.UUID         `json:"chatId"`
	MessageID  uuid.UUID         `json:"messageId"`
	SenderType domain.SenderType `json:"senderType"`
	SenderName string            `json:"senderName"`
	Body       string            `json:"message"`
	SentAt     time.Time         `json:"sentAt"`
}

// Publisher delivers events to subscribers. Implementations must be safe for
// concurrent use.
type Publisher interface {
	// PublishOrderStatus announces an order status change.
	PublishOrderStatus(ctx context.Context, ev OrderStatusEvent) error

	// PublishChatMessage announces a new chat message.
	PublishChatMessage(ctx context.Context, ev ChatMessageEvent) error
}

// NoopPublisher discards all events. Used in tests and when no broker is
// configured.
type NoopPublisher struct{}

var _ Publisher = (*NoopPublisher)(nil)

// PublishOrderStatus discards the event.
func (NoopPublisher) PublishOrderStatus(ctx context.Context, ev OrderStatusEvent) error {
	return nil
}

// PublishChatMessage discards the event.
func (NoopPublisher) PublishChatMessage(ctx context.Context, ev ChatMessageEvent) error {
	return nil
}
