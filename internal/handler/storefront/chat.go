package storefront

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/handler"
	"github.com/rcabrera/tindahan/internal/service"
)

// ChatHandler handles the customer side of the chat channel.
type ChatHandler struct {
	chats  service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chats service.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{chats: chats, logger: logger}
}

// Get handles GET /api/chat/{customerID}, creating the chat on first access.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, err := handler.PathUUID(r, "customerID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	chat, err := h.chats.GetOrCreateChat(r.Context(), customerID)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, chat)
}

// History handles GET /api/chat/{customerID}/history?limit=&skip=.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	customerID, err := handler.PathUUID(r, "customerID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	history, err := h.chats.GetHistory(r.Context(), customerID, limit, skip)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, history)
}

type sendMessageRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	Message    string    `json:"message" validate:"required"`
}

// Send handles POST /api/chat/send.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	msg, err := h.chats.SendCustomerMessage(r.Context(), req.CustomerID, req.Message)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusCreated, msg)
}

type chatReadRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
}

// MarkRead handles PUT /api/chat/read.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req chatReadRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	if err := h.chats.MarkCustomerRead(r.Context(), req.CustomerID); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]string{"message": "Messages marked as read"})
}

// Delete handles DELETE /api/chat/{customerID}: the customer clears their
// own conversation history.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	customerID, err := handler.PathUUID(r, "customerID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	if err := h.chats.DeleteChat(r.Context(), customerID); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]string{"message": "Chat deleted successfully"})
}

// UnreadCount handles GET /api/chat/{customerID}/unread.
func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	customerID, err := handler.PathUUID(r, "customerID")
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	count, err := h.chats.UnreadCount(r.Context(), customerID)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]int32{"unreadCount": count})
}
