package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/talenthub-api/internal/infrastructure/s3"
	"github.com/talenthub-api/internal/pkg/id"
	"github.com/talenthub-api/internal/transport/http/middleware"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

// AttachmentHandler uploads message attachments to object storage. The
// returned URL goes into SendMessageRequest.AttachmentURL; messages only
// ever carry the reference, never the bytes.
type AttachmentHandler struct {
	store *s3infra.Store
}

func NewAttachmentHandler(store *s3infra.Store) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or oversized file field")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("attachments/%s/%s%s", claims.UserID, id.New(), filepath.Ext(header.Filename))
	url, err := h.store.Upload(r.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "attachment upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, AttachmentEnvelope{URL: url})
}
