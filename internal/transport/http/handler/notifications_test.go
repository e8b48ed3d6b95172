package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/talenthub-api/internal/domain"
	"go.uber.org/zap"
)

// --- mock ---

type mockNotifSvc struct{ mock.Mock }

func (m *mockNotifSvc) Notify(ctx context.Context, recipientID, senderID, message, notifType string) (*domain.Notification, error) {
	args := m.Called(ctx, recipientID, senderID, message, notifType)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) List(ctx context.Context, recipientID string) ([]domain.EnrichedNotification, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).([]domain.EnrichedNotification), args.Error(1)
}

func (m *mockNotifSvc) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	args := m.Called(ctx, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) MarkUnread(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) MarkAllRead(ctx context.Context, recipientID string) error {
	return m.Called(ctx, recipientID).Error(0)
}

// --- inbox tests ---

func TestNotificationList_MissingClaims(t *testing.T) {
	h := NewNotificationHandler(&mockNotifSvc{})
	r := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestNotificationList_HappyPath(t *testing.T) {
	svc := &mockNotifSvc{}
	items := []domain.EnrichedNotification{
		{Notification: domain.Notification{NotificationID: "n1", RecipientID: "u1", Message: "Sent you a connection request"}},
	}
	svc.On("List", mock.Anything, "u1").Return(items, nil)
	h := NewNotificationHandler(svc)

	r := asUser(httptest.NewRequest(http.MethodGet, "/v1/notifications", nil), "u1")
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []domain.EnrichedNotification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "n1", resp[0].NotificationID)
	svc.AssertExpectations(t)
}

func TestNotificationMarkRead_UnknownID(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("MarkRead", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	h := NewNotificationHandler(svc)

	r := withChiParam(httptest.NewRequest(http.MethodPatch, "/v1/notifications/mark-read/missing", nil), "id", "missing")
	rr := httptest.NewRecorder()
	h.MarkRead(rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	svc.AssertExpectations(t)
}

func TestNotificationUnreadCount(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("UnreadCount", mock.Anything, "u1").Return(4, nil)
	h := NewNotificationHandler(svc)

	r := asUser(httptest.NewRequest(http.MethodGet, "/v1/notifications/unread-count", nil), "u1")
	rr := httptest.NewRecorder()
	h.UnreadCount(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp CountEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 4, resp.Count)
	svc.AssertExpectations(t)
}

// --- trigger tests ---

func TestTriggerConnectionRequest_HappyPath(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("Notify", mock.Anything, "u2", "u1", "Sent you a connection request", domain.NotificationConnectionRequest).
		Return(&domain.Notification{NotificationID: "n1"}, nil)
	h := NewTriggerHandler(svc, zap.NewNop())

	body, _ := json.Marshal(domain.ConnectionEventRequest{SenderID: "u1", RecipientID: "u2"})
	r := httptest.NewRequest(http.MethodPost, "/v1/connections/request", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ConnectionRequest(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestTriggerConnectionAccept_NotifyFailureStillOK(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("Notify", mock.Anything, "u2", "u1", mock.Anything, domain.NotificationConnectionAccepted).
		Return(nil, errors.New("dynamo down"))
	h := NewTriggerHandler(svc, zap.NewNop())

	body, _ := json.Marshal(domain.ConnectionEventRequest{SenderID: "u1", RecipientID: "u2"})
	r := httptest.NewRequest(http.MethodPost, "/v1/connections/accept", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ConnectionAccept(rr, r)

	// The triggering business action already succeeded; the caller still gets ok.
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestTriggerApplicationStatus_MissingRecipient(t *testing.T) {
	h := NewTriggerHandler(&mockNotifSvc{}, zap.NewNop())

	body, _ := json.Marshal(domain.ApplicationStatusRequest{Message: "Your application moved to interview"})
	r := httptest.NewRequest(http.MethodPost, "/v1/applications/status", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ApplicationStatus(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTriggerApplicationStatus_UsesCallerAsSender(t *testing.T) {
	svc := &mockNotifSvc{}
	svc.On("Notify", mock.Anything, "u2", "company1", "Your application moved to interview", domain.NotificationApplicationStatus).
		Return(&domain.Notification{NotificationID: "n1"}, nil)
	h := NewTriggerHandler(svc, zap.NewNop())

	body, _ := json.Marshal(domain.ApplicationStatusRequest{RecipientID: "u2", Message: "Your application moved to interview"})
	r := asUser(httptest.NewRequest(http.MethodPost, "/v1/applications/status", bytes.NewReader(body)), "company1")
	rr := httptest.NewRecorder()
	h.ApplicationStatus(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
