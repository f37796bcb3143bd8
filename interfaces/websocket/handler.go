package websocket

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"retro-backend/application/realtime"
	"retro-backend/pkg/auth"
	pkgerrors "retro-backend/pkg/errors"
)

// Handler upgrades HTTP requests to websocket subscriptions. Browsers
// cannot set headers on websocket dials, so the token is also accepted as
// a query parameter.
type Handler struct {
	broadcaster *realtime.Broadcaster
	tokens      *auth.TokenService
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewHandler creates a websocket handler.
func NewHandler(broadcaster *realtime.Broadcaster, tokens *auth.TokenService, logger *zap.Logger) *Handler {
	return &Handler{
		broadcaster: broadcaster,
		tokens:      tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS layer and token
			// binding, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve handles GET /sessions/{sessionID}/ws
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}

	actor, err := h.tokens.Validate(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}
	if actor.SessionID.String() != chi.URLParam(r, "sessionID") {
		http.Error(w, "token does not grant access to this session", http.StatusForbidden)
		return
	}

	// Subscribe before upgrading so a failed subscription can still produce
	// a proper HTTP error.
	snapshot, sub, err := h.broadcaster.Subscribe(r.Context(), actor)
	if err != nil {
		status := pkgerrors.HTTPStatusOf(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.broadcaster.Unsubscribe(actor.SessionID, sub)
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(actor.SessionID, conn, sub, h.broadcaster, h.logger)
	go client.Start(snapshot)
}
