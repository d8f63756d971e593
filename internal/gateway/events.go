package gateway

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inbound event names.
const (
	EventAuth        = "auth"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventMarkRead    = "mark_read"
)

// Outbound event names.
const (
	EventOnlineUsers  = "online_users"
	EventNewMessage   = "new_message"
	EventMessageSent  = "message_sent"
	EventMessageError = "message_error"
	EventUserTyping   = "user_typing"
	EventMessagesRead = "messages_read"
)

// Frame is the wire envelope for every event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if f.Event == "" {
		return nil, fmt.Errorf("frame without event name")
	}
	return &f, nil
}

func EncodeFrame(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: payload})
}

type AuthPayload struct {
	Token string `json:"token"`
}

type SendMessagePayload struct {
	RecipientID int64  `json:"recipientId"`
	Content     string `json:"content"`
}

type TypingPayload struct {
	RecipientID int64 `json:"recipientId"`
	IsTyping    bool  `json:"isTyping"`
}

type MarkReadPayload struct {
	SenderID int64 `json:"senderId"`
}

type MessageSentPayload struct {
	Success     bool      `json:"success"`
	RecipientID int64     `json:"recipientId"`
	Timestamp   time.Time `json:"timestamp"`
}

type MessageErrorPayload struct {
	Error string `json:"error"`
}

type UserTypingPayload struct {
	UserID   int64 `json:"userId"`
	IsTyping bool  `json:"isTyping"`
}

type MessagesReadPayload struct {
	UserID int64 `json:"userId"`
}
