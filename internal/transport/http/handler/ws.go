package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	jwtinfra "github.com/talenthub-api/internal/infrastructure/jwt"
	"github.com/talenthub-api/internal/realtime"
	"go.uber.org/zap"
)

// WSHandler upgrades HTTP connections to the live event channel. A bearer
// token is accepted either as an Authorization header or a `token` query
// parameter (browser WebSocket clients cannot set headers). Connections
// without a valid token are still upgraded but stay anonymous until they
// send a join-user frame.
type WSHandler struct {
	upgrader   websocket.Upgrader
	jwt        *jwtinfra.Provider
	registry   *realtime.Registry
	dispatcher *realtime.Dispatcher
	opts       realtime.Options
	log        *zap.Logger
}

func NewWSHandler(jwt *jwtinfra.Provider, registry *realtime.Registry, dispatcher *realtime.Dispatcher, opts realtime.Options, allowedOrigins []string, log *zap.Logger) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		jwt:        jwt,
		registry:   registry,
		dispatcher: dispatcher,
		opts:       opts,
		log:        log,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimSuffix(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		_, ok := set[strings.TrimSuffix(origin, "/")]
		return ok
	}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := h.authenticate(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	realtime.ServeConn(conn, userID, h.registry, h.dispatcher, h.opts, h.log)
}

func (h *WSHandler) authenticate(r *http.Request) string {
	if h.jwt == nil {
		return ""
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token == "" {
		return ""
	}
	claims, err := h.jwt.Verify(token)
	if err != nil {
		h.log.Debug("websocket token rejected", zap.Error(err))
		return ""
	}
	return claims.UserID
}
