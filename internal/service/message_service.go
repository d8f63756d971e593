package service

import (
	"context"
	"errors"
	"strings"

	"github.com/workhubhq/presence-gateway/internal/domain"
	"github.com/workhubhq/presence-gateway/internal/repository"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

type MessageService interface {
	// Send validates the recipient, persists the message and returns the
	// stored row. Message identity (id, created_at) always comes from
	// the store's insert result.
	Send(ctx context.Context, senderID, recipientID int64, content string) (*domain.Message, error)
	History(ctx context.Context, userID, otherUserID int64, limit, offset int) ([]domain.Message, error)
	Conversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
	MarkRead(ctx context.Context, readerID, senderID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

type messageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	unread   repository.UnreadCache
	l        logger.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	unread repository.UnreadCache,
	l logger.Logger,
) MessageService {
	return &messageService{
		messages: messages,
		users:    users,
		unread:   unread,
		l:        l,
	}
}

func (s *messageService) Send(ctx context.Context, senderID, recipientID int64, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	if _, err := s.users.FindByID(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		s.l.Errorf(ctx, "messageService.Send: %v", err)
		return nil, err
	}

	msg, err := s.messages.Insert(ctx, senderID, recipientID, content)
	if err != nil {
		s.l.Errorf(ctx, "messageService.Send: %v", err)
		return nil, err
	}

	// Best effort: a stale total is corrected on the next cache fill.
	if err := s.unread.Invalidate(ctx, recipientID); err != nil {
		s.l.Warnf(ctx, "messageService.Send: invalidate unread cache: %v", err)
	}

	return msg, nil
}

func (s *messageService) History(ctx context.Context, userID, otherUserID int64, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.messages.History(ctx, userID, otherUserID, limit, offset)
}

func (s *messageService) Conversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	return s.messages.Conversations(ctx, userID)
}

func (s *messageService) MarkRead(ctx context.Context, readerID, senderID int64) (int64, error) {
	count, err := s.messages.MarkRead(ctx, readerID, senderID)
	if err != nil {
		s.l.Errorf(ctx, "messageService.MarkRead: %v", err)
		return 0, err
	}

	if err := s.unread.Invalidate(ctx, readerID); err != nil {
		s.l.Warnf(ctx, "messageService.MarkRead: invalidate unread cache: %v", err)
	}

	return count, nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if count, ok, err := s.unread.Get(ctx, userID); err == nil && ok {
		return count, nil
	}

	count, err := s.messages.UnreadCount(ctx, userID)
	if err != nil {
		s.l.Errorf(ctx, "messageService.UnreadCount: %v", err)
		return 0, err
	}

	if err := s.unread.Set(ctx, userID, count); err != nil {
		s.l.Warnf(ctx, "messageService.UnreadCount: fill unread cache: %v", err)
	}

	return count, nil
}
