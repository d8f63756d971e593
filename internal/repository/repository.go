// Package repository declares the query interfaces the durable store and
// cache are accessed through. Implementations live in the subpackages.
package repository

import (
	"context"
	"errors"

	"github.com/workhubhq/presence-gateway/internal/domain"
)

var ErrNotFound = errors.New("not found")

type MessageRepository interface {
	// Insert stores a message and returns the stored row; the returned
	// id and created_at are the store's, never the caller's.
	Insert(ctx context.Context, senderID, recipientID int64, content string) (*domain.Message, error)
	History(ctx context.Context, userID, otherUserID int64, limit, offset int) ([]domain.Message, error)
	Conversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
	// MarkRead flags every unread message from senderID to readerID and
	// returns how many rows changed.
	MarkRead(ctx context.Context, readerID, senderID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// UnreadCache is a read-through cache for unread totals. Get reports a
// miss through its second return value; a miss is not an error.
type UnreadCache interface {
	Get(ctx context.Context, userID int64) (int64, bool, error)
	Set(ctx context.Context, userID, count int64) error
	Invalidate(ctx context.Context, userID int64) error
}
