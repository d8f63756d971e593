package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/workhubhq/presence-gateway/config"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

// NewRouter wires the REST surface and the websocket endpoint.
func NewRouter(cfg config.GatewayConfig, h *Handler, wsHandler http.HandlerFunc, verifier TokenVerifier, l logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(l))
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/health", h.HealthCheck)
	r.Get("/ws", wsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(Auth(verifier, l))

		r.Route("/messages", func(r chi.Router) {
			r.Get("/conversations", h.GetConversations)
			r.Get("/unread/count", h.GetUnreadCount)
			r.Post("/", h.SendMessage)
			r.Get("/{otherUserId}", h.GetMessages)
			r.Put("/{otherUserId}/read", h.MarkAsRead)
		})

		r.Get("/presence/online", h.GetOnlineUsers)
	})

	return r
}
