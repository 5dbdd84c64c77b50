package admin

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/handler"
	"github.com/rcabrera/tindahan/internal/service"
)

// ChatHandler handles the admin side of the chat channel.
type ChatHandler struct {
	chats  service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new admin chat handler.
func NewChatHandler(chats service.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{chats: chats, logger: logger}
}

// List handles GET /api/admin/chats: active conversations, most recent
// message first.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.ListActiveChats(r.Context())
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	handler.JSON(w, http.StatusOK, chats)
}

type adminSendRequest struct {
	ChatID    uuid.UUID `json:"chatId" validate:"required"`
	AdminID   uuid.UUID `json:"adminId" validate:"required"`
	AdminName string    `json:"adminName" validate:"required"`
	Message   string    `json:"message" validate:"required"`
}

// Send handles POST /api/admin/chat/send. The first admin to reply is
// assigned to the chat.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req adminSendRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	msg, err := h.chats.SendAdminMessage(r.Context(), req.ChatID, req.AdminID, req.AdminName, req.Message)
	if err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusCreated, msg)
}

type adminReadRequest struct {
	ChatID uuid.UUID `json:"chatId" validate:"required"`
}

// MarkRead handles PUT /api/admin/chat/read.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req adminReadRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	if err := h.chats.MarkAdminRead(r.Context(), req.ChatID); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]string{"message": "Messages marked as read"})
}

type closeChatRequest struct {
	ChatID uuid.UUID `json:"chatId" validate:"required"`
}

// Close handles PUT /api/admin/chat/close.
func (h *ChatHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req closeChatRequest
	if err := handler.Bind(r, &req); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}

	if err := h.chats.CloseChat(r.Context(), req.ChatID); err != nil {
		handler.Error(w, r, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]string{"message": "Chat closed"})
}
