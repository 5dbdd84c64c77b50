package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Chat-related domain errors.
var (
	ErrChatNotFound     = &Error{Code: ENOTFOUND, Message: "Chat not found"}
	ErrEmptyChatMessage = &Error{Code: EINVALID, Message: "Message body is required"}
)

// SenderType identifies which side of a conversation wrote a message.
type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderAdmin    SenderType = "admin"
)

// ChatStatus is the lifecycle state of a conversation.
type ChatStatus string

const (
	ChatStatusActive ChatStatus = "active"
	ChatStatusClosed ChatStatus = "closed"
)

// Chat is a per-customer conversation thread with the store's admins.
// Unread counters are per side: a customer message bumps the admin counter
// and vice versa.
type Chat struct {
	ID uuid.UUID `json:"id"`

	CustomerID    uuid.UUID `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`

	// AdminID is set when the first admin replies and sticks for the
	// lifetime of the chat.
	AdminID   *uuid.UUID `json:"adminId,omitempty"`
	AdminName string     `json:"adminName,omitempty"`

	Messages []ChatMessage `json:"messages,omitempty"`

	LastMessage   string     `json:"lastMessage,omitempty"`
	LastMessageAt time.Time  `json:"lastMessageAt"`
	LastMessageBy SenderType `json:"lastMessageBy,omitempty"`

	UnreadCustomer int32 `json:"unreadCountCustomer"`
	UnreadAdmin    int32 `json:"unreadCountAdmin"`

	Status    ChatStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ChatMessage is one message in a conversation.
type ChatMessage struct {
	ID         uuid.UUID  `json:"id"`
	ChatID     uuid.UUID  `json:"chatId"`
	SenderID   uuid.UUID  `json:"senderId"`
	SenderType SenderType `json:"senderType"`
	SenderName string     `json:"senderName"`
	Body       string     `json:"message"`
	SentAt     time.Time  `json:"sentAt"`
	Read       bool       `json:"read"`
}

// ChatStore persists conversations.
type ChatStore interface {
	// GetChatByCustomer returns the customer's chat with all messages, or
	// ErrChatNotFound.
	GetChatByCustomer(ctx context.Context, customerID uuid.UUID) (*Chat, error)

	// GetChat returns the chat by ID with all messages, or ErrChatNotFound.
	GetChat(ctx context.Context, chatID uuid.UUID) (*Chat, error)

	// CreateChat creates an empty active chat for the customer.
	CreateChat(ctx context.Context, customerID uuid.UUID, customerName, customerEmail string) (*Chat, error)

	// AppendMessage atomically appends a message, updates the last-message
	// fields and bumps the opposite side's unread counter.
	AppendMessage(ctx context.Context, chatID uuid.UUID, msg ChatMessage) (*ChatMessage, error)

	// AssignAdmin records the first admin to reply. A no-op when the chat
	// already has an admin.
	AssignAdmin(ctx context.Context, chatID, adminID uuid.UUID, adminName string) error

	// MarkMessagesRead marks the other side's messages as read and resets
	// the reader's unread counter. Idempotent.
	MarkMessagesRead(ctx context.Context, chatID uuid.UUID, reader SenderType) error

	// ListActiveChats returns active chats ordered by most recent message.
	ListActiveChats(ctx context.Context) ([]Chat, error)

	// SetChatStatus transitions the conversation between active and closed.
	SetChatStatus(ctx context.Context, chatID uuid.UUID, status ChatStatus) error

	// DeleteChat removes the conversation and its messages.
	DeleteChat(ctx context.Context, chatID uuid.UUID) error
}
