package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Subject layout. Clients subscribe to their own order or chat subject.
const (
	orderStatusSubject = "order.status.%s" // order ID
	chatMessageSubject = "chat.message.%s" // chat ID
)

// NATSPublisher publishes events as JSON over NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("tindahan"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

// PublishOrderStatus publishes to order.status.<orderID>.
func (p *NATSPublisher) PublishOrderStatus(ctx context.Context, ev OrderStatusEvent) error {
	return p.publish(fmt.Sprintf(orderStatusSubject, ev.OrderID), ev)
}

// PublishChatMessage publishes to chat.message.<chatID>.
func (p *NATSPublisher) PublishChatMessage(ctx context.Context, ev ChatMessageEvent) error {
	return p.publish(fmt.Sprintf(chatMessageSubject, ev.ChatID), ev)
}

func (p *NATSPublisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}
