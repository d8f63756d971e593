package gateway

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/workhubhq/presence-gateway/config"
	"github.com/workhubhq/presence-gateway/internal/domain"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

// TokenVerifier validates the credential presented during the handshake.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// MessageSender persists an outgoing message and returns the stored row.
// The returned message carries the durable store's id and created_at;
// live delivery always uses that confirmed identity.
type MessageSender interface {
	Send(ctx context.Context, senderID, recipientID int64, content string) (*domain.Message, error)
}

// PresencePublisher notifies external collaborators of presence changes.
type PresencePublisher interface {
	PublishPresenceChanged(ctx context.Context, userID int64, online bool) error
}

type eventHandler func(ctx context.Context, c *Client, data json.RawMessage)

// Gateway owns the websocket endpoint: it admits connections through the
// authenticator, tracks presence, routes inbound events and exposes the
// outbound push primitive to collaborators.
type Gateway struct {
	cfg      config.GatewayConfig
	verifier TokenVerifier
	messages MessageSender
	presence PresencePublisher // optional

	registry *Registry
	hub      *Hub
	upgrader websocket.Upgrader
	handlers map[string]eventHandler

	l logger.Logger
}

func New(cfg config.GatewayConfig, verifier TokenVerifier, messages MessageSender, presence PresencePublisher, l logger.Logger) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		verifier: verifier,
		messages: messages,
		presence: presence,
		registry: NewRegistry(),
		hub:      NewHub(),
		l:        l,
	}

	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     g.checkOrigin,
	}

	g.handlers = map[string]eventHandler{
		EventSendMessage: g.handleSendMessage,
		EventTyping:      g.handleTyping,
		EventMarkRead:    g.handleMarkRead,
	}

	return g
}

var (
	defaultGateway *Gateway
	defaultMu      sync.Mutex
)

// Initialize builds the process-wide gateway exactly once. Collaborators
// reach it through Instance afterwards.
func Initialize(cfg config.GatewayConfig, verifier TokenVerifier, messages MessageSender, presence PresencePublisher, l logger.Logger) (*Gateway, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultGateway != nil {
		return nil, ErrAlreadyInitialized
	}

	defaultGateway = New(cfg, verifier, messages, presence, l)
	return defaultGateway, nil
}

// Instance returns the process-wide gateway. Calling it before Initialize
// is a startup-ordering bug and fails loudly.
func Instance() (*Gateway, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultGateway == nil {
		return nil, ErrNotInitialized
	}
	return defaultGateway, nil
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients (tools, tests) send no Origin header.
		return true
	}
	for _, allowed := range g.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// HandleWS upgrades the request and runs the connection to completion.
// The first frame must be the auth handshake; nothing else is processed
// before the identity is verified.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.l.Warnf(ctx, "websocket upgrade failed: %v", err)
		return
	}

	identity, err := g.awaitAuth(conn)
	if err != nil {
		g.l.Warnf(ctx, "admission rejected: remote=%s err=%v", conn.RemoteAddr(), err)
		g.reject(conn)
		return
	}

	c := newClient(conn, identity, g.cfg, g.l)
	go c.writePump()

	g.admit(ctx, c)
	g.readLoop(c)
	g.drop(context.Background(), c)
}

// awaitAuth reads the handshake frame and verifies the credential it
// carries. Any deviation (timeout, wrong frame, bad token) rejects the
// attempt; reasons are not distinguished to the client.
func (g *Gateway) awaitAuth(conn *websocket.Conn) (domain.Identity, error) {
	conn.SetReadLimit(g.cfg.MaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(g.cfg.AuthDeadline)); err != nil {
		return domain.Identity{}, err
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return domain.Identity{}, err
	}

	frame, err := ParseFrame(raw)
	if err != nil {
		return domain.Identity{}, err
	}
	if frame.Event != EventAuth {
		return domain.Identity{}, ErrHandshakeExpected
	}

	var payload AuthPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil {
		return domain.Identity{}, err
	}

	identity, err := g.verifier.Verify(payload.Token)
	if err != nil {
		return domain.Identity{}, err
	}

	// Admitted: switch to the steady-state read deadline, refreshed on
	// every pong.
	if err := conn.SetReadDeadline(time.Now().Add(g.cfg.PongWait)); err != nil {
		return domain.Identity{}, err
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(g.cfg.PongWait))
	})

	return identity, nil
}

// reject closes an unadmitted connection with the uniform admission
// error. No identity, registry entry or handlers exist at this point.
func (g *Gateway) reject(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Authentication error")
	_ = conn.SetWriteDeadline(time.Now().Add(g.cfg.WriteTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage, msg)
	_ = conn.Close()
}

func (g *Gateway) admit(ctx context.Context, c *Client) {
	userID := c.identity.UserID

	g.registry.Register(userID, c.id)
	g.hub.Join(RoomForUser(userID), c)
	g.broadcastPresence()

	if g.presence != nil {
		if err := g.presence.PublishPresenceChanged(ctx, userID, true); err != nil {
			g.l.Warnf(ctx, "presence publish failed: user=%d err=%v", userID, err)
		}
	}

	g.l.Infof(ctx, "user connected: %d (%s)", userID, c.identity.Email)
}

// drop tears down a finished connection. The registry entry is removed
// unconditionally (see Registry); dropping an identity that is already
// absent still rebroadcasts the unchanged presence snapshot.
func (g *Gateway) drop(ctx context.Context, c *Client) {
	userID := c.identity.UserID

	g.hub.Leave(c.id)
	g.registry.Unregister(userID)
	g.broadcastPresence()
	c.Close()

	if g.presence != nil {
		if err := g.presence.PublishPresenceChanged(ctx, userID, false); err != nil {
			g.l.Warnf(ctx, "presence publish failed: user=%d err=%v", userID, err)
		}
	}

	g.l.Infof(ctx, "user disconnected: %d", userID)
}

// broadcastPresence sends the full online_users snapshot to every
// admitted connection.
func (g *Gateway) broadcastPresence() {
	payload, err := EncodeFrame(EventOnlineUsers, g.registry.ListUserIDs())
	if err != nil {
		g.l.Errorf(context.Background(), "encode online_users: %v", err)
		return
	}
	g.hub.Broadcast(payload)
}

// readLoop delivers inbound frames to their handlers in arrival order.
// Handler failures are reported to the originating connection only and
// never terminate the loop.
func (g *Gateway) readLoop(c *Client) {
	ctx := context.Background()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
					g.l.Debugf(ctx, "read failed: user=%d conn=%s err=%v", c.identity.UserID, c.id, err)
				}
			}
			return
		}

		frame, err := ParseFrame(raw)
		if err != nil {
			g.l.Warnf(ctx, "dropping frame: user=%d err=%v", c.identity.UserID, err)
			continue
		}

		handler, ok := g.handlers[frame.Event]
		if !ok {
			g.l.Warnf(ctx, "no handler for event %q: user=%d", frame.Event, c.identity.UserID)
			continue
		}

		g.dispatch(ctx, c, frame.Event, handler, frame.Data)
	}
}

func (g *Gateway) dispatch(ctx context.Context, c *Client, event string, handler eventHandler, data json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			g.l.Errorf(ctx, "handler panic: event=%s user=%d: %v", event, c.identity.UserID, r)
		}
	}()
	handler(ctx, c, data)
}

func (g *Gateway) handleSendMessage(ctx context.Context, c *Client, data json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		g.emitSendError(c)
		return
	}

	msg, err := g.messages.Send(ctx, c.identity.UserID, p.RecipientID, p.Content)
	if err != nil {
		g.l.Errorf(ctx, "send message failed: sender=%d recipient=%d err=%v", c.identity.UserID, p.RecipientID, err)
		g.emitSendError(c)
		return
	}

	out, err := EncodeFrame(EventNewMessage, msg)
	if err != nil {
		g.emitSendError(c)
		return
	}
	g.hub.EmitToRoom(RoomForUser(p.RecipientID), out)

	sent, err := EncodeFrame(EventMessageSent, MessageSentPayload{
		Success:     true,
		RecipientID: p.RecipientID,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return
	}
	c.Send(sent)
}

func (g *Gateway) emitSendError(c *Client) {
	// Deliberately generic: the sender learns nothing about the cause.
	payload, err := EncodeFrame(EventMessageError, MessageErrorPayload{Error: "Failed to send message"})
	if err != nil {
		return
	}
	c.Send(payload)
}

func (g *Gateway) handleTyping(ctx context.Context, c *Client, data json.RawMessage) {
	// Malformed payloads are tolerated: zero values address an empty room.
	var p TypingPayload
	_ = json.Unmarshal(data, &p)

	out, err := EncodeFrame(EventUserTyping, UserTypingPayload{
		UserID:   c.identity.UserID,
		IsTyping: p.IsTyping,
	})
	if err != nil {
		return
	}
	g.hub.EmitToRoom(RoomForUser(p.RecipientID), out)
}

func (g *Gateway) handleMarkRead(ctx context.Context, c *Client, data json.RawMessage) {
	var p MarkReadPayload
	_ = json.Unmarshal(data, &p)

	out, err := EncodeFrame(EventMessagesRead, MessagesReadPayload{UserID: c.identity.UserID})
	if err != nil {
		return
	}
	g.hub.EmitToRoom(RoomForUser(p.SenderID), out)
}

// PushToUser delivers an event to every live connection of userID. When
// the user holds no connection the call is a safe no-op; the durable
// store remains the source of truth for missed updates.
func (g *Gateway) PushToUser(userID int64, event string, payload any) error {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		return err
	}
	g.hub.EmitToRoom(RoomForUser(userID), frame)
	return nil
}

func (g *Gateway) IsOnline(userID int64) bool {
	return g.registry.IsOnline(userID)
}

// OnlineUserIDs returns a snapshot of currently admitted user ids.
func (g *Gateway) OnlineUserIDs() []int64 {
	return g.registry.ListUserIDs()
}

// Close tears down every admitted connection; used on shutdown.
func (g *Gateway) Close() {
	g.hub.CloseAll()
}
