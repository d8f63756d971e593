package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/workhubhq/presence-gateway/config"
	"github.com/workhubhq/presence-gateway/internal/domain"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

// Client is one admitted websocket connection. It owns the underlying
// conn for its lifetime and carries the identity extracted at admission;
// the identity never changes afterwards. All writes go through the send
// queue so that a single write pump serializes outbound traffic.
type Client struct {
	id       string
	identity domain.Identity
	conn     *websocket.Conn

	send chan []byte
	done chan struct{}

	closeOnce sync.Once

	cfg config.GatewayConfig
	l   logger.Logger
}

func newClient(conn *websocket.Conn, identity domain.Identity, cfg config.GatewayConfig, l logger.Logger) *Client {
	return &Client{
		id:       uuid.New().String(),
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, cfg.SendBufferSize),
		done:     make(chan struct{}),
		cfg:      cfg,
		l:        l,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Identity() domain.Identity { return c.identity }

// Send enqueues payload for delivery. It never blocks: when the queue is
// full the payload is dropped, because a stalled reader must not hold up
// delivery to anyone else.
func (c *Client) Send(payload []byte) {
	select {
	case <-c.done:
	case c.send <- payload:
	default:
		c.l.Warnf(context.Background(), "send queue full, dropping frame: user=%d conn=%s", c.identity.UserID, c.id)
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with pings. It exits when the client closes or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.l.Debugf(context.Background(), "write failed: user=%d conn=%s err=%v", c.identity.UserID, c.id, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
