package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/talenthub-api/internal/application/conversation"
	"github.com/talenthub-api/internal/domain"
	"github.com/talenthub-api/internal/pkg/validate"
	"github.com/talenthub-api/internal/transport/http/middleware"
)

// MessageHandler handles the direct-message endpoints.
type MessageHandler struct {
	svc conversation.Service
}

func NewMessageHandler(svc conversation.Service) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg, err := h.svc.SendMessage(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) ListConversation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	messages, err := h.svc.ListConversation(r.Context(), claims.UserID, chi.URLParam(r, "userId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.MarkRead(r.Context(), claims.UserID, chi.URLParam(r, "senderId")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}

// UnreadCounts returns the per-sender unread aggregate for the caller. The
// optional comma-separated `connections` query parameter carries the caller's
// accepted-connections set from the account service; when present the badge
// is scoped to it.
func (h *MessageHandler) UnreadCounts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var connections []string
	if raw := r.URL.Query().Get("connections"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				connections = append(connections, c)
			}
		}
	}
	counts, err := h.svc.UnreadCounts(r.Context(), claims.UserID, connections)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
