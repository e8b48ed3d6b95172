package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/talenthub-api/internal/domain"
	"github.com/talenthub-api/internal/realtime"
	"go.uber.org/zap"
)

// --- mocks ---

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Put(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockMessageStore) ListConversation(ctx context.Context, userA, userB string, limit int32) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB, limit)
	msgs, _ := args.Get(0).([]domain.Message)
	return msgs, args.Error(1)
}
func (m *mockMessageStore) MarkRead(ctx context.Context, recipientID, senderID string) error {
	return m.Called(ctx, recipientID, senderID).Error(0)
}
func (m *mockMessageStore) CountUnreadBySender(ctx context.Context, recipientID string) (map[string]int, error) {
	args := m.Called(ctx, recipientID)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingDispatcher captures published events in call order.
type recordingDispatcher struct {
	events []publishedEvent
}

type publishedEvent struct {
	UserID string
	Event  realtime.Event
}

func (d *recordingDispatcher) Publish(userID string, ev realtime.Event) {
	d.events = append(d.events, publishedEvent{UserID: userID, Event: ev})
}

func (d *recordingDispatcher) forUser(userID string) []realtime.Event {
	var out []realtime.Event
	for _, p := range d.events {
		if p.UserID == userID {
			out = append(out, p.Event)
		}
	}
	return out
}

// --- helpers ---

func newService(ms *mockMessageStore, ps *mockProfileStore, d *recordingDispatcher) Service {
	return NewService(ServiceDeps{
		MessageRepo: ms,
		ProfileRepo: ps,
		Dispatcher:  d,
		Logger:      zap.NewNop(),
	})
}

func profile(userID, name string) *domain.Profile {
	return &domain.Profile{UserID: userID, Name: name}
}

// --- SendMessage tests ---

func TestSendMessage_NoContentNoAttachment(t *testing.T) {
	svc := newService(&mockMessageStore{}, &mockProfileStore{}, &recordingDispatcher{})

	_, err := svc.SendMessage(context.Background(), "u1", domain.SendMessageRequest{RecipientID: "u2"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSendMessage_UnknownRecipient(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, "u1").Return(profile("u1", "Alice"), nil)
	ps.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := newService(&mockMessageStore{}, ps, &recordingDispatcher{})
	_, err := svc.SendMessage(context.Background(), "u1", domain.SendMessageRequest{
		RecipientID: "ghost", Content: "hi",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSendMessage_PersistsBeforeDispatch(t *testing.T) {
	ms := &mockMessageStore{}
	ps := &mockProfileStore{}
	d := &recordingDispatcher{}
	ps.On("Get", mock.Anything, "u1").Return(profile("u1", "Alice"), nil)
	ps.On("Get", mock.Anything, "u2").Return(profile("u2", "Bob"), nil)
	ms.On("Put", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)

	svc := newService(ms, ps, d)
	enriched, err := svc.SendMessage(context.Background(), "u1", domain.SendMessageRequest{
		RecipientID: "u2", Content: "hi",
	})

	require.NoError(t, err)
	assert.False(t, enriched.Read)
	assert.Equal(t, "hi", enriched.Content)
	assert.Equal(t, "Alice", enriched.Sender.Name)
	assert.NotEmpty(t, enriched.MessageID)
	ms.AssertExpectations(t)

	// new-message reaches both parties so the sender's other sessions sync.
	recipientEvents := d.forUser("u2")
	require.Len(t, recipientEvents, 2)
	assert.Equal(t, realtime.EventNewMessage, recipientEvents[0].Type)
	assert.Equal(t, realtime.EventUpdateUnreadCount, recipientEvents[1].Type)
	delta := recipientEvents[1].Payload.(realtime.UnreadDelta)
	assert.Equal(t, "u1", delta.SenderID)
	assert.True(t, delta.Increment)

	senderEvents := d.forUser("u1")
	require.Len(t, senderEvents, 1)
	assert.Equal(t, realtime.EventNewMessage, senderEvents[0].Type)
}

func TestSendMessage_SelfMessage_NoUnreadDelta(t *testing.T) {
	ms := &mockMessageStore{}
	ps := &mockProfileStore{}
	d := &recordingDispatcher{}
	ps.On("Get", mock.Anything, "u1").Return(profile("u1", "Alice"), nil)
	ms.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newService(ms, ps, d)
	_, err := svc.SendMessage(context.Background(), "u1", domain.SendMessageRequest{
		RecipientID: "u1", Content: "note to self",
	})

	require.NoError(t, err)
	for _, ev := range d.forUser("u1") {
		assert.NotEqual(t, realtime.EventUpdateUnreadCount, ev.Type)
	}
}

func TestSendMessage_AttachmentOnly_Valid(t *testing.T) {
	ms := &mockMessageStore{}
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, mock.Anything).Return(profile("u1", "Alice"), nil)
	ms.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newService(ms, ps, &recordingDispatcher{})
	enriched, err := svc.SendMessage(context.Background(), "u1", domain.SendMessageRequest{
		RecipientID: "u2", AttachmentURL: "s3://bucket/cv.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/cv.pdf", enriched.AttachmentURL)
}

func TestSendMessage_StoreError_NoDispatch(t *testing.T) {
	ms := &mockMessageStore{}
	ps := &mockProfileStore{}
	d := &recordingDispatcher{}
	ps.On("Get", mock.Anything, mock.Anything).Return(profile("u1", "Alice"), nil)
	ms.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo unavailable"))

	svc := newService(ms, ps, d)
	_, err := svc.SendMessage(context.Background(), "u1", domain.SendMessageRequest{
		RecipientID: "u2", Content: "hi",
	})

	require.Error(t, err)
	assert.Empty(t, d.events)
}

// --- MarkRead tests ---

func TestMarkRead_DispatchesReset(t *testing.T) {
	ms := &mockMessageStore{}
	d := &recordingDispatcher{}
	ms.On("MarkRead", mock.Anything, "u2", "u1").Return(nil)

	svc := newService(ms, &mockProfileStore{}, d)
	require.NoError(t, svc.MarkRead(context.Background(), "u2", "u1"))

	events := d.forUser("u2")
	require.Len(t, events, 1)
	delta := events[0].Payload.(realtime.UnreadDelta)
	assert.Equal(t, "u1", delta.SenderID)
	assert.False(t, delta.Increment)
}

func TestMarkRead_Idempotent(t *testing.T) {
	ms := &mockMessageStore{}
	ms.On("MarkRead", mock.Anything, "u2", "u1").Return(nil).Twice()

	svc := newService(ms, &mockProfileStore{}, &recordingDispatcher{})
	require.NoError(t, svc.MarkRead(context.Background(), "u2", "u1"))
	require.NoError(t, svc.MarkRead(context.Background(), "u2", "u1"))
	ms.AssertExpectations(t)
}

// --- UnreadCounts tests ---

func TestUnreadCounts_NoFilter(t *testing.T) {
	ms := &mockMessageStore{}
	ms.On("CountUnreadBySender", mock.Anything, "u2").
		Return(map[string]int{"u1": 3, "u9": 1}, nil)

	svc := newService(ms, &mockProfileStore{}, &recordingDispatcher{})
	counts, err := svc.UnreadCounts(context.Background(), "u2", nil)

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 3, "u9": 1}, counts)
}

func TestUnreadCounts_ConnectionFilter(t *testing.T) {
	ms := &mockMessageStore{}
	ms.On("CountUnreadBySender", mock.Anything, "u2").
		Return(map[string]int{"u1": 3, "u9": 1}, nil)

	svc := newService(ms, &mockProfileStore{}, &recordingDispatcher{})
	counts, err := svc.UnreadCounts(context.Background(), "u2", []string{"u1"})

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 3}, counts)
}

func TestUnreadCounts_EmptyAfterMarkRead(t *testing.T) {
	ms := &mockMessageStore{}
	ms.On("CountUnreadBySender", mock.Anything, "u2").Return(map[string]int{}, nil)

	svc := newService(ms, &mockProfileStore{}, &recordingDispatcher{})
	counts, err := svc.UnreadCounts(context.Background(), "u2", nil)

	require.NoError(t, err)
	assert.Empty(t, counts)
}

// --- ListConversation tests ---

func TestListConversation_EnrichesWithOneLookupPerSender(t *testing.T) {
	ms := &mockMessageStore{}
	ps := &mockProfileStore{}
	ms.On("ListConversation", mock.Anything, "u1", "u2", int32(conversationPageCap)).
		Return([]domain.Message{
			{MessageID: "m1", SenderID: "u1", RecipientID: "u2", Content: "hi"},
			{MessageID: "m2", SenderID: "u2", RecipientID: "u1", Content: "hello"},
			{MessageID: "m3", SenderID: "u1", RecipientID: "u2", Content: "how are you"},
		}, nil)
	ps.On("Get", mock.Anything, "u1").Return(profile("u1", "Alice"), nil).Once()
	ps.On("Get", mock.Anything, "u2").Return(profile("u2", "Bob"), nil).Once()

	svc := newService(ms, ps, &recordingDispatcher{})
	out, err := svc.ListConversation(context.Background(), "u1", "u2")

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Alice", out[0].Sender.Name)
	assert.Equal(t, "Bob", out[1].Sender.Name)
	assert.Equal(t, "Alice", out[2].Sender.Name)
	ps.AssertExpectations(t)
}

func TestListConversation_ProfileFailure_LeavesSenderNil(t *testing.T) {
	ms := &mockMessageStore{}
	ps := &mockProfileStore{}
	ms.On("ListConversation", mock.Anything, "u1", "u2", mock.Anything).
		Return([]domain.Message{{MessageID: "m1", SenderID: "u1", Content: "hi"}}, nil)
	ps.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	svc := newService(ms, ps, &recordingDispatcher{})
	out, err := svc.ListConversation(context.Background(), "u1", "u2")

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Sender)
	assert.Equal(t, "hi", out[0].Content)
}
