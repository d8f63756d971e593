package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workhubhq/presence-gateway/internal/domain"
	"github.com/workhubhq/presence-gateway/internal/repository"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

type messageRepository struct {
	pool *pgxpool.Pool
	l    logger.Logger
}

func NewMessageRepository(pool *pgxpool.Pool, l logger.Logger) repository.MessageRepository {
	return &messageRepository{
		pool: pool,
		l:    l,
	}
}

func (r *messageRepository) Insert(ctx context.Context, senderID, recipientID int64, content string) (*domain.Message, error) {
	const query = `
		INSERT INTO messages (sender_id, recipient_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, sender_id, recipient_id, content, is_read, created_at`

	var m domain.Message
	err := r.pool.QueryRow(ctx, query, senderID, recipientID, content).Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt,
	)
	if err != nil {
		r.l.Errorf(ctx, "messageRepository.Insert: %v", err)
		return nil, fmt.Errorf("insert message: %w", err)
	}

	return &m, nil
}

func (r *messageRepository) History(ctx context.Context, userID, otherUserID int64, limit, offset int) ([]domain.Message, error) {
	const query = `
		SELECT
			m.id,
			m.sender_id,
			m.recipient_id,
			m.content,
			m.is_read,
			m.created_at,
			sender.full_name AS sender_name,
			recipient.full_name AS recipient_name
		FROM messages m
		JOIN users sender ON sender.id = m.sender_id
		JOIN users recipient ON recipient.id = m.recipient_id
		WHERE
			(m.sender_id = $1 AND m.recipient_id = $2)
			OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, userID, otherUserID, limit, offset)
	if err != nil {
		r.l.Errorf(ctx, "messageRepository.History: %v", err)
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt,
			&m.SenderName, &m.RecipientName,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	// The page is selected newest-first; callers render oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *messageRepository) Conversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	const query = `
		WITH conversation_messages AS (
			SELECT DISTINCT
				CASE
					WHEN sender_id = $1 THEN recipient_id
					ELSE sender_id
				END AS other_user_id
			FROM messages
			WHERE sender_id = $1 OR recipient_id = $1
		),
		last_messages AS (
			SELECT DISTINCT ON (
				CASE
					WHEN sender_id = $1 THEN recipient_id
					ELSE sender_id
				END
			)
				CASE
					WHEN sender_id = $1 THEN recipient_id
					ELSE sender_id
				END AS other_user_id,
				content AS last_message,
				created_at AS last_message_time,
				sender_id = $1 AS sent_by_me
			FROM messages
			WHERE sender_id = $1 OR recipient_id = $1
			ORDER BY
				CASE
					WHEN sender_id = $1 THEN recipient_id
					ELSE sender_id
				END,
				created_at DESC
		),
		unread_counts AS (
			SELECT
				sender_id AS other_user_id,
				COUNT(*) AS unread_count
			FROM messages
			WHERE recipient_id = $1 AND is_read = FALSE
			GROUP BY sender_id
		)
		SELECT
			u.id,
			u.full_name,
			u.email,
			u.role,
			COALESCE(lm.last_message, '') AS last_message,
			lm.last_message_time,
			COALESCE(lm.sent_by_me, FALSE) AS sent_by_me,
			COALESCE(uc.unread_count, 0) AS unread_count
		FROM conversation_messages cm
		JOIN users u ON u.id = cm.other_user_id
		LEFT JOIN last_messages lm ON lm.other_user_id = cm.other_user_id
		LEFT JOIN unread_counts uc ON uc.other_user_id = cm.other_user_id
		ORDER BY lm.last_message_time DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.l.Errorf(ctx, "messageRepository.Conversations: %v", err)
		return nil, fmt.Errorf("fetch conversations: %w", err)
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(
			&c.UserID, &c.FullName, &c.Email, &c.Role,
			&c.LastMessage, &c.LastMessageTime, &c.SentByMe, &c.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch conversations: %w", err)
	}

	return conversations, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, readerID, senderID int64) (int64, error) {
	const query = `
		UPDATE messages
		SET is_read = TRUE
		WHERE recipient_id = $1 AND sender_id = $2 AND is_read = FALSE`

	tag, err := r.pool.Exec(ctx, query, readerID, senderID)
	if err != nil {
		r.l.Errorf(ctx, "messageRepository.MarkRead: %v", err)
		return 0, fmt.Errorf("mark read: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM messages
		WHERE recipient_id = $1 AND is_read = FALSE`

	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.l.Errorf(ctx, "messageRepository.UnreadCount: %v", err)
		return 0, fmt.Errorf("unread count: %w", err)
	}

	return count, nil
}
