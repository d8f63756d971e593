package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/workhubhq/presence-gateway/internal/gateway"
	"github.com/workhubhq/presence-gateway/internal/service"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

// Pusher is the slice of the gateway the REST layer needs: real-time
// notification of state changes and presence reads.
type Pusher interface {
	PushToUser(userID int64, event string, payload any) error
	IsOnline(userID int64) bool
	OnlineUserIDs() []int64
}

type Handler struct {
	messages  service.MessageService
	gw        Pusher
	l         logger.Logger
	validator *validator.Validate
}

func NewHandler(messages service.MessageService, gw Pusher, l logger.Logger) *Handler {
	return &Handler{
		messages:  messages,
		gw:        gw,
		l:         l,
		validator: validator.New(),
	}
}

type sendMessageRequest struct {
	RecipientID int64  `json:"recipientId" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "OK",
		"message": "Presence gateway is running",
	})
}

func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	conversations, err := h.messages.Conversations(r.Context(), identity.UserID)
	if err != nil {
		h.l.Errorf(r.Context(), "GetConversations: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch conversations", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"conversations": conversations,
	})
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	otherUserID, err := strconv.ParseInt(chi.URLParam(r, "otherUserId"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	messages, err := h.messages.History(r.Context(), identity.UserID, otherUserID, limit, offset)
	if err != nil {
		h.l.Errorf(r.Context(), "GetMessages: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch messages", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"messages": messages,
	})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Recipient ID and message content are required", err)
		return
	}

	msg, err := h.messages.Send(r.Context(), identity.UserID, req.RecipientID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipientNotFound):
			h.respondError(w, http.StatusNotFound, "Recipient not found", err)
		case errors.Is(err, service.ErrEmptyContent):
			h.respondError(w, http.StatusBadRequest, "Recipient ID and message content are required", err)
		default:
			h.l.Errorf(r.Context(), "SendMessage: %v", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to send message", err)
		}
		return
	}

	// Live delivery carries the stored row; absent recipients simply
	// miss the push and recover via history.
	if err := h.gw.PushToUser(req.RecipientID, gateway.EventNewMessage, msg); err != nil {
		h.l.Warnf(r.Context(), "SendMessage: push failed: %v", err)
	}

	h.respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": msg,
	})
}

func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	otherUserID, err := strconv.ParseInt(chi.URLParam(r, "otherUserId"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	count, err := h.messages.MarkRead(r.Context(), identity.UserID, otherUserID)
	if err != nil {
		h.l.Errorf(r.Context(), "MarkAsRead: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to mark messages as read", err)
		return
	}

	if err := h.gw.PushToUser(otherUserID, gateway.EventMessagesRead, gateway.MessagesReadPayload{UserID: identity.UserID}); err != nil {
		h.l.Warnf(r.Context(), "MarkAsRead: push failed: %v", err)
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"marked_count": count,
	})
}

func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	count, err := h.messages.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		h.l.Errorf(r.Context(), "GetUnreadCount: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch unread count", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"unread_count": count,
	})
}

func (h *Handler) GetOnlineUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromContext(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"userIds": h.gw.OnlineUserIDs(),
	})
}

// Helper functions

func (h *Handler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.l.Errorf(context.Background(), "failed to encode JSON response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		h.l.Debugf(context.Background(), "error response: %s: %v", message, err)
	}

	h.respondJSON(w, statusCode, map[string]any{
		"error": message,
		"code":  statusCode,
	})
}
