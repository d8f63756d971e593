package domain

import "time"

type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined display fields, populated on history reads only.
	SenderName    string `json:"sender_name,omitempty"`
	RecipientName string `json:"recipient_name,omitempty"`
}

// Conversation is one row of the conversation overview: the counterpart
// user plus the latest exchanged message and how many of theirs are unread.
type Conversation struct {
	UserID          int64      `json:"id"`
	FullName        string     `json:"full_name"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	LastMessage     string     `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time"`
	SentByMe        bool       `json:"sent_by_me"`
	UnreadCount     int64      `json:"unread_count"`
}
