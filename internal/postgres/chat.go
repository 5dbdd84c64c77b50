package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcabrera/tindahan/internal/domain"
)

// ChatStore implements domain.ChatStore using PostgreSQL.
//
// The unread counters and last-message columns are maintained in the same
// transaction as the message insert, so a list of chats never disagrees
// with the messages underneath it.
type ChatStore struct {
	pool *pgxpool.Pool
}

var _ domain.ChatStore = (*ChatStore)(nil)

// NewChatStore creates a PostgreSQL-backed chat store.
func NewChatStore(pool *pgxpool.Pool) *ChatStore {
	return &ChatStore{pool: pool}
}

const chatColumns = `id, customer_id, customer_name, customer_email, admin_id, admin_name,
	last_message, last_message_at, last_message_by,
	unread_customer, unread_admin, status, created_at, updated_at`

// GetChatByCustomer returns the customer's chat with all messages.
func (s *ChatStore) GetChatByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Chat, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE customer_id = $1`, customerID)
	return s.scanChatWithMessages(ctx, row, "chat.get_by_customer")
}

// GetChat returns the chat by ID with all messages.
func (s *ChatStore) GetChat(ctx context.Context, chatID uuid.UUID) (*domain.Chat, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE id = $1`, chatID)
	return s.scanChatWithMessages(ctx, row, "chat.get")
}

func (s *ChatStore) scanChatWithMessages(ctx context.Context, row pgx.Row, op string) (*domain.Chat, error) {
	c, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChatNotFound
		}
		return nil, domain.Internal(err, op, "failed to get chat")
	}
	if err := s.loadMessages(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateChat creates an empty active chat for the customer.
func (s *ChatStore) CreateChat(ctx context.Context, customerID uuid.UUID, customerName, customerEmail string) (*domain.Chat, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO chats (id, customer_id, customer_name, customer_email, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING `+chatColumns,
		uuid.New(), customerID, customerName, customerEmail)

	c, err := scanChat(row)
	if err != nil {
		return nil, domain.Internal(err, "chat.create", "failed to create chat")
	}
	return c, nil
}

// AppendMessage inserts the message and updates the parent chat's
// last-message fields and the opposite side's unread counter atomically.
func (s *ChatStore) AppendMessage(ctx context.Context, chatID uuid.UUID, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	msg.ID = uuid.New()
	msg.ChatID = chatID

	counter := "unread_admin"
	if msg.SenderType == domain.SenderAdmin {
		counter = "unread_customer"
	}

	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO chat_messages (id, chat_id, sender_id, sender_type, sender_name, body)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING sent_at`,
			msg.ID, chatID, msg.SenderID, msg.SenderType, msg.SenderName, msg.Body,
		).Scan(&msg.SentAt)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE chats
			SET last_message = $2, last_message_at = $3, last_message_by = $4,
			    `+counter+` = `+counter+` + 1, updated_at = now()
			WHERE id = $1`, chatID, msg.Body, msg.SentAt, msg.SenderType)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrChatNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) || isForeignKeyViolation(err) {
			return nil, domain.ErrChatNotFound
		}
		return nil, domain.Internal(err, "chat.append_message", "failed to append message")
	}
	return &msg, nil
}

// AssignAdmin records the first admin to reply. The NULL guard makes reruns
// and racing admins a no-op.
func (s *ChatStore) AssignAdmin(ctx context.Context, chatID, adminID uuid.UUID, adminName string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE chats SET admin_id = $2, admin_name = $3, updated_at = now()
		WHERE id = $1 AND admin_id IS NULL`, chatID, adminID, adminName)
	if err != nil {
		return domain.Internal(err, "chat.assign_admin", "failed to assign admin")
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM chats WHERE id = $1)`, chatID).Scan(&exists); err != nil {
			return domain.Internal(err, "chat.assign_admin", "failed to check chat existence")
		}
		if !exists {
			return domain.ErrChatNotFound
		}
	}
	return nil
}

// MarkMessagesRead marks the other side's messages as read and resets the
// reader's unread counter. Idempotent.
func (s *ChatStore) MarkMessagesRead(ctx context.Context, chatID uuid.UUID, reader domain.SenderType) error {
	counter := "unread_customer"
	if reader == domain.SenderAdmin {
		counter = "unread_admin"
	}

	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE chats SET `+counter+` = 0, updated_at = now() WHERE id = $1`, chatID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrChatNotFound
		}

		_, err = tx.Exec(ctx, `
			UPDATE chat_messages SET read = TRUE
			WHERE chat_id = $1 AND sender_type <> $2`, chatID, reader)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			return domain.ErrChatNotFound
		}
		return domain.Internal(err, "chat.mark_read", "failed to mark messages read")
	}
	return nil
}

// ListActiveChats returns active chats ordered by most recent message,
// without message bodies.
func (s *ChatStore) ListActiveChats(ctx context.Context) ([]domain.Chat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+chatColumns+` FROM chats
		WHERE status = 'active'
		ORDER BY last_message_at DESC`)
	if err != nil {
		return nil, domain.Internal(err, "chat.list_active", "failed to list chats")
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, domain.Internal(err, "chat.list_active", "failed to scan chat")
		}
		chats = append(chats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "chat.list_active", "failed to iterate chats")
	}
	return chats, nil
}

// SetChatStatus transitions the conversation between active and closed.
func (s *ChatStore) SetChatStatus(ctx context.Context, chatID uuid.UUID, status domain.ChatStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE chats SET status = $2, updated_at = now() WHERE id = $1`, chatID, status)
	if err != nil {
		return domain.Internal(err, "chat.set_status", "failed to set chat status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

// DeleteChat removes the conversation; messages go with it via ON DELETE
// CASCADE.
func (s *ChatStore) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, chatID)
	if err != nil {
		return domain.Internal(err, "chat.delete", "failed to delete chat")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

func (s *ChatStore) loadMessages(ctx context.Context, c *domain.Chat) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, chat_id, sender_id, sender_type, sender_name, body, sent_at, read
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY sent_at, id`, c.ID)
	if err != nil {
		return domain.Internal(err, "chat.messages", "failed to list messages")
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.SenderType, &m.SenderName, &m.Body, &m.SentAt, &m.Read); err != nil {
			return domain.Internal(err, "chat.messages", "failed to scan message")
		}
		c.Messages = append(c.Messages, m)
	}
	return rows.Err()
}

func scanChat(row pgx.Row) (*domain.Chat, error) {
	var (
		c         domain.Chat
		lastMsg   *string
		lastAt    *time.Time
		lastBy    *string
		adminName *string
	)
	err := row.Scan(&c.ID, &c.CustomerID, &c.CustomerName, &c.CustomerEmail, &c.AdminID, &adminName,
		&lastMsg, &lastAt, &lastBy,
		&c.UnreadCustomer, &c.UnreadAdmin, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastMsg != nil {
		c.LastMessage = *lastMsg
	}
	if lastAt != nil {
		c.LastMessageAt = *lastAt
	}
	if lastBy != nil {
		c.LastMessageBy = domain.SenderType(*lastBy)
	}
	if adminName != nil {
		c.AdminName = *adminName
	}
	return &c, nil
}
