package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/workhubhq/presence-gateway/internal/repository"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

const unreadTTL = 30 * time.Second

// unreadCache keeps per-user unread totals in Redis in front of the
// durable store. Entries are short-lived and invalidated on every write
// that could change the total, so the store stays authoritative.
type unreadCache struct {
	cli *goredis.Client
	l   logger.Logger
}

func NewUnreadCache(cli *goredis.Client, l logger.Logger) repository.UnreadCache {
	return &unreadCache{
		cli: cli,
		l:   l,
	}
}

func (c *unreadCache) Get(ctx context.Context, userID int64) (int64, bool, error) {
	count, err := c.cli.Get(ctx, c.key(userID)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, false, nil
		}
		c.l.Errorf(ctx, "unreadCache.Get: %v", err)
		return 0, false, fmt.Errorf("unread cache get: %w", err)
	}

	return count, true, nil
}

func (c *unreadCache) Set(ctx context.Context, userID, count int64) error {
	if err := c.cli.Set(ctx, c.key(userID), count, unreadTTL).Err(); err != nil {
		c.l.Errorf(ctx, "unreadCache.Set: %v", err)
		return fmt.Errorf("unread cache set: %w", err)
	}
	return nil
}

func (c *unreadCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.cli.Del(ctx, c.key(userID)).Err(); err != nil {
		c.l.Errorf(ctx, "unreadCache.Invalidate: %v", err)
		return fmt.Errorf("unread cache invalidate: %w", err)
	}
	return nil
}

func (c *unreadCache) key(userID int64) string {
	return fmt.Sprintf("chat:unread:%d", userID)
}
