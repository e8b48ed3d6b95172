package handler

import (
	"encoding/json"
	"net/http"

	"github.com/talenthub-api/internal/application/notification"
	"github.com/talenthub-api/internal/domain"
	"github.com/talenthub-api/internal/pkg/validate"
	"github.com/talenthub-api/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// TriggerHandler receives notification trigger events from the platform
// workflows (connection requests, application-status changes). The triggering
// business action must succeed even when the notification cannot be handled,
// so Notify failures are logged and the trigger still reports ok.
type TriggerHandler struct {
	svc notification.Service
	log *zap.Logger
}

func NewTriggerHandler(svc notification.Service, log *zap.Logger) *TriggerHandler {
	return &TriggerHandler{svc: svc, log: log}
}

func (h *TriggerHandler) ConnectionRequest(w http.ResponseWriter, r *http.Request) {
	h.connectionEvent(w, r, domain.NotificationConnectionRequest, "Sent you a connection request")
}

func (h *TriggerHandler) ConnectionAccept(w http.ResponseWriter, r *http.Request) {
	h.connectionEvent(w, r, domain.NotificationConnectionAccepted, "Accepted your connection request")
}

func (h *TriggerHandler) connectionEvent(w http.ResponseWriter, r *http.Request, notifType, message string) {
	var req domain.ConnectionEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.svc.Notify(r.Context(), req.RecipientID, req.SenderID, message, notifType); err != nil {
		h.log.Warn("notification failed",
			zap.String("type", notifType),
			zap.String("recipient_id", req.RecipientID),
			zap.Error(err),
		)
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}

// ApplicationStatus notifies an applicant about a status change. The sender
// is the company acting through the caller's identity when available, or
// system-generated otherwise.
func (h *TriggerHandler) ApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplicationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	senderID := ""
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		senderID = claims.UserID
	}
	if _, err := h.svc.Notify(r.Context(), req.RecipientID, senderID, req.Message, domain.NotificationApplicationStatus); err != nil {
		h.log.Warn("notification failed",
			zap.String("type", domain.NotificationApplicationStatus),
			zap.String("recipient_id", req.RecipientID),
			zap.Error(err),
		)
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}
