package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/events"
)

// ChatService runs the customer/admin conversation channel. One thread per
// customer, created lazily; the first admin to reply is assigned for the
// lifetime of the chat.
type ChatService interface {
	// GetOrCreateChat returns the customer's chat, creating an empty one on
	// first access.
	GetOrCreateChat(ctx context.Context, customerID uuid.UUID) (*domain.Chat, error)

	// GetHistory returns a window of the customer's messages: skip newest
	// messages skipped, then up to limit messages, in chronological order.
	GetHistory(ctx context.Context, customerID uuid.UUID, limit, skip int) (*ChatHistory, error)

	// SendCustomerMessage appends a customer message, bumping the admin
	// unread counter.
	SendCustomerMessage(ctx context.Context, customerID uuid.UUID, body string) (*domain.ChatMessage, error)

	// SendAdminMessage appends an admin message, bumping the customer
	// unread counter and assigning the admin if the chat has none.
	SendAdminMessage(ctx context.Context, chatID, adminID uuid.UUID, adminName, body string) (*domain.ChatMessage, error)

	// MarkCustomerRead marks admin messages read and zeroes the customer
	// unread counter. Idempotent.
	MarkCustomerRead(ctx context.Context, customerID uuid.UUID) error

	// MarkAdminRead marks customer messages read and zeroes the admin
	// unread counter. Idempotent.
	MarkAdminRead(ctx context.Context, chatID uuid.UUID) error

	// UnreadCount returns the customer-side unread counter; a customer with
	// no chat has zero unread.
	UnreadCount(ctx context.Context, customerID uuid.UUID) (int32, error)

	// ListActiveChats returns active chats for the admin dashboard, most
	// recent message first, without message bodies.
	ListActiveChats(ctx context.Context) ([]domain.Chat, error)

	// CloseChat marks the conversation closed.
	CloseChat(ctx context.Context, chatID uuid.UUID) error

	// DeleteChat removes the customer's conversation entirely.
	DeleteChat(ctx context.Context, customerID uuid.UUID) error
}

// ChatHistory is one page of a conversation.
type ChatHistory struct {
	Chat          *domain.Chat         `json:"chat"`
	Messages      []domain.ChatMessage `json:"messages"`
	TotalMessages int                  `json:"totalMessages"`
}

type chatService struct {
	chats     domain.ChatStore
	customers domain.CustomerStore
	publisher events.Publisher
	logger    *slog.Logger
}

// NewChatService creates the chat service.
func NewChatService(chats domain.ChatStore, customers domain.CustomerStore, publisher events.Publisher, logger *slog.Logger) ChatService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		chats:     chats,
		customers: customers,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *chatService) GetOrCreateChat(ctx context.Context, customerID uuid.UUID) (*domain.Chat, error) {
	chat, err := s.chats.GetChatByCustomer(ctx, customerID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, domain.ErrChatNotFound) {
		return nil, err
	}

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.chats.CreateChat(ctx, customerID, customer.DisplayName(), customer.Email)
}

func (s *chatService) GetHistory(ctx context.Context, customerID uuid.UUID, limit, skip int) (*ChatHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	chat, err := s.chats.GetChatByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	total := len(chat.Messages)
	// Window counted from the newest message backwards, returned in
	// chronological order.
	end := total - skip
	if end < 0 {
		end = 0
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	page := chat.Messages[start:end]

	history := &ChatHistory{
		Chat:          chat,
		Messages:      page,
		TotalMessages: total,
	}
	chat.Messages = nil
	return history, nil
}

func (s *chatService) SendCustomerMessage(ctx context.Context, customerID uuid.UUID, body string) (*domain.ChatMessage, error) {
	if body == "" {
		return nil, domain.ErrEmptyChatMessage
	}

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	chat, err := s.GetOrCreateChat(ctx, customerID)
	if err != nil {
		return nil, err
	}

	msg, err := s.chats.AppendMessage(ctx, chat.ID, domain.ChatMessage{
		SenderID:   customerID,
		SenderType: domain.SenderCustomer,
		SenderName: customer.DisplayName(),
		Body:       body,
	})
	if err != nil {
		return nil, err
	}

	s.publishMessage(ctx, msg)
	return msg, nil
}

func (s *chatService) SendAdminMessage(ctx context.Context, chatID, adminID uuid.UUID, adminName, body string) (*domain.ChatMessage, error) {
	if body == "" {
		return nil, domain.ErrEmptyChatMessage
	}

	if _, err := s.chats.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	if err := s.chats.AssignAdmin(ctx, chatID, adminID, adminName); err != nil {
		return nil, err
	}

	msg, err := s.chats.AppendMessage(ctx, chatID, domain.ChatMessage{
		SenderID:   adminID,
		SenderType: domain.SenderAdmin,
		SenderName: adminName,
		Body:       body,
	})
	if err != nil {
		return nil, err
	}

	s.publishMessage(ctx, msg)
	return msg, nil
}

func (s *chatService) MarkCustomerRead(ctx context.Context, customerID uuid.UUID) error {
	chat, err := s.chats.GetChatByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return s.chats.MarkMessagesRead(ctx, chat.ID, domain.SenderCustomer)
}

func (s *chatService) MarkAdminRead(ctx context.Context, chatID uuid.UUID) error {
	return s.chats.MarkMessagesRead(ctx, chatID, domain.SenderAdmin)
}

func (s *chatService) UnreadCount(ctx context.Context, customerID uuid.UUID) (int32, error) {
	chat, err := s.chats.GetChatByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return chat.UnreadCustomer, nil
}

func (s *chatService) ListActiveChats(ctx context.Context) ([]domain.Chat, error) {
	return s.chats.ListActiveChats(ctx)
}

func (s *chatService) CloseChat(ctx context.Context, chatID uuid.UUID) error {
	return s.chats.SetChatStatus(ctx, chatID, domain.ChatStatusClosed)
}

func (s *chatService) DeleteChat(ctx context.Context, customerID uuid.UUID) error {
	chat, err := s.chats.GetChatByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return s.chats.DeleteChat(ctx, chat.ID)
}

func (s *chatService) publishMessage(ctx context.Context, msg *domain.ChatMessage) {
	ev := events.ChatMessageEvent{
		ChatID:     msg.ChatID,
		MessageID:  msg.ID,
		SenderType: msg.SenderType,
		SenderName: msg.SenderName,
		Body:       msg.Body,
		SentAt:     msg.SentAt,
	}
	if err := s.publisher.PublishChatMessage(ctx, ev); err != nil {
		s.logger.Warn("failed to publish chat message event", "chat_id", msg.ChatID, "error", err)
	}
}
