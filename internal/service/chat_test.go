package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/memory"
	"github.com/rcabrera/tindahan/internal/service"
)

func newChatFixture(t *testing.T) (*memory.Store, service.ChatService, *domain.Customer) {
	t.Helper()
	store := memory.NewStore()
	svc := service.NewChatService(store, store, nil, nil)
	customer := seedCustomer(t, store, "maria")
	return store, svc, customer
}

func TestGetOrCreateChat(t *testing.T) {
	ctx := context.Background()
	_, svc, customer := newChatFixture(t)

	chat, err := svc.GetOrCreateChat(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, chat.CustomerID)
	assert.Equal(t, "maria", chat.CustomerName)
	assert.Equal(t, domain.ChatStatusActive, chat.Status)
	assert.Empty(t, chat.Messages)

	// Second call returns the same thread.
	again, err := svc.GetOrCreateChat(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, again.ID)

	_, err = svc.GetOrCreateChat(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound, "unknown customers get no chat")
}

func TestSendMessages_UnreadCounters(t *testing.T) {
	ctx := context.Background()
	_, svc, customer := newChatFixture(t)
	admin := uuid.New()

	// Customer messages bump the admin counter only.
	_, err := svc.SendCustomerMessage(ctx, customer.ID, "hello po")
	require.NoError(t, err)
	_, err = svc.SendCustomerMessage(ctx, customer.ID, "anyone there?")
	require.NoError(t, err)

	chat, err := svc.GetOrCreateChat(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), chat.UnreadAdmin)
	assert.Equal(t, int32(0), chat.UnreadCustomer)
	assert.Equal(t, "anyone there?", chat.LastMessage)
	assert.Equal(t, domain.SenderCustomer, chat.LastMessageBy)

	// Admin reply bumps the customer counter and assigns the admin.
	_, err = svc.SendAdminMessage(ctx, chat.ID, admin, "Ana", "yes, how can I help?")
	require.NoError(t, err)

	chat, err = svc.GetOrCreateChat(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), chat.UnreadCustomer)
	require.NotNil(t, chat.AdminID)
	assert.Equal(t, admin, *chat.AdminID)
	assert.Equal(t, "Ana", chat.AdminName)

	unread, err := svc.UnreadCount(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), unread)

	// A different admin replying later does not take over the thread.
	_, err = svc.SendAdminMessage(ctx, chat.ID, uuid.New(), "Ben", "following up")
	require.NoError(t, err)
	chat, err = svc.GetOrCreateChat(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, admin, *chat.AdminID, "first responder keeps the assignment")
}

func TestSendMessages_Validation(t *testing.T) {
	ctx := context.Background()
	_, svc, customer := newChatFixture(t)

	_, err := svc.SendCustomerMessage(ctx, customer.ID, "")
	assert.ErrorIs(t, err, domain.ErrEmptyChatMessage)

	_, err = svc.SendAdminMessage(ctx, uuid.New(), uuid.New(), "Ana", "hi")
	assert.ErrorIs(t, err, domain.ErrChatNotFound)
}

func TestMarkRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	_, svc, customer := newChatFixture(t)

	_, err := svc.SendCustomerMessage(ctx, customer.ID, "ping")
	require.NoError(t, err)
	chat, err := svc.GetOrCreateChat(ctx, customer.ID)
	require.NoError(t, err)
	_, err = svc.SendAdminMessage(ctx, chat.ID, uuid.New(), "Ana", "pong")
	require.NoError(t, err)

	require.NoError(t, svc.MarkAdminRead(ctx, chat.ID))
	require.NoError(t, svc.MarkAdminRead(ctx, chat.ID), "second mark is a no-op")
	require.NoError(t, svc.MarkCustomerRead(ctx, customer.ID))

	chat, err = svc.GetOrCreateChat(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), chat.UnreadAdmin)
	assert.Equal(t, int32(0), chat.UnreadCustomer)
	for _, msg := range chat.Messages {
		assert.True(t, msg.Read, "message %q should be read", msg.Body)
	}

	unread, err := svc.UnreadCount(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int32(0), unread, "no chat means nothing unread")
}

func TestGetHistory_WindowFromNewest(t *testing.T) {
	ctx := context.Background()
	_, svc, customer := newChatFixture(t)

	for i := 1; i <= 10; i++ {
		_, err := svc.SendCustomerMessage(ctx, customer.ID, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	// Latest 3.
	history, err := svc.GetHistory(ctx, customer.ID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, history.TotalMessages)
	require.Len(t, history.Messages, 3)
	assert.Equal(t, "msg 8", history.Messages[0].Body)
	assert.Equal(t, "msg 10", history.Messages[2].Body)
	assert.Nil(t, history.Chat.Messages, "the chat header carries no message bodies")

	// Skip the newest 3, take the previous 3.
	history, err = svc.GetHistory(ctx, customer.ID, 3, 3)
	require.NoError(t, err)
	require.Len(t, history.Messages, 3)
	assert.Equal(t, "msg 5", history.Messages[0].Body)
	assert.Equal(t, "msg 7", history.Messages[2].Body)

	// Window running off the old end is clamped.
	history, err = svc.GetHistory(ctx, customer.ID, 5, 8)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "msg 1", history.Messages[0].Body)

	// Defaults: limit 50, skip 0.
	history, err = svc.GetHistory(ctx, customer.ID, 0, -4)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 10)

	_, err = svc.GetHistory(ctx, uuid.New(), 10, 0)
	assert.ErrorIs(t, err, domain.ErrChatNotFound)
}

func TestListActiveChats_ExcludesClosed(t *testing.T) {
	ctx := context.Background()
	store, svc, customer := newChatFixture(t)
	other := seedCustomer(t, store, "juan")

	_, err := svc.SendCustomerMessage(ctx, customer.ID, "hi")
	require.NoError(t, err)
	_, err = svc.SendCustomerMessage(ctx, other.ID, "hello")
	require.NoError(t, err)

	chats, err := svc.ListActiveChats(ctx)
	require.NoError(t, err)
	assert.Len(t, chats, 2)
	for _, c := range chats {
		assert.Empty(t, c.Messages, "dashboard listing omits bodies")
	}

	first, err := svc.GetOrCreateChat(ctx, customer.ID)
	require.NoError(t, err)
	require.NoError(t, svc.CloseChat(ctx, first.ID))

	chats, err = svc.ListActiveChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, other.ID, chats[0].CustomerID)
}

func TestDeleteChat(t *testing.T) {
	ctx := context.Background()
	_, svc, customer := newChatFixture(t)

	_, err := svc.SendCustomerMessage(ctx, customer.ID, "bye")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteChat(ctx, customer.ID))

	_, err = svc.GetHistory(ctx, customer.ID, 10, 0)
	assert.ErrorIs(t, err, domain.ErrChatNotFound)

	err = svc.DeleteChat(ctx, customer.ID)
	assert.ErrorIs(t, err, domain.ErrChatNotFound)
}
