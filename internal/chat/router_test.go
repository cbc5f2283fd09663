package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/notification-service/internal/apperr"
	"github.com/civicdesk/notification-service/internal/directory"
	"github.com/civicdesk/notification-service/internal/models"
	"github.com/civicdesk/notification-service/internal/repository"
	"github.com/civicdesk/notification-service/pkg/logger"
)

type pushRecorder struct {
	mu     sync.Mutex
	pushes []recordedPush
}

type recordedPush struct {
	RecipientID string
	Event       string
	Payload     any
}

func (p *pushRecorder) Push(recipientID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, recordedPush{recipientID, event, payload})
}

func (p *pushRecorder) all() []recordedPush {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedPush(nil), p.pushes...)
}

func newTestRouter(t *testing.T) (*Router, *repository.MemoryMessageStore, *pushRecorder) {
	t.Helper()
	store := repository.NewMemoryMessageStore()
	dir := directory.NewStatic(
		models.Contact{ID: "S1", Kind: models.KindStaff, Name: "Ravi"},
		models.Contact{ID: "A1", Kind: models.KindAdmin, Name: "Meera"},
	)
	pushes := &pushRecorder{}
	return NewRouter(store, dir, pushes, logger.Nop()), store, pushes
}

func TestConversationIDOrderIndependent(t *testing.T) {
	assert.Equal(t, ConversationID("a", "b", ""), ConversationID("b", "a", ""))
	assert.Equal(t, ConversationID("a", "b", "c9"), ConversationID("b", "a", "c9"))
}

func TestConversationIDComplaintScoping(t *testing.T) {
	base := ConversationID("a", "b", "")
	c1 := ConversationID("a", "b", "c1")
	c2 := ConversationID("a", "b", "c2")
	assert.NotEqual(t, c1, c2)
	assert.NotEqual(t, base, c1)
}

func TestConversationIDDistinctPairs(t *testing.T) {
	assert.NotEqual(t, ConversationID("a", "b", ""), ConversationID("a", "c", ""))
}

func TestSendMessageValidation(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "", ReceiverRole: models.RoleAdmin,
		Body: "hi",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// citizens are not chat participants
	_, err = r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: "User",
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "hi",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// nothing was persisted
	msgs, err := store.ListByComplaint(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendMessagePersistsAndPushesToReceiver(t *testing.T) {
	r, _, pushes := newTestRouter(t)
	ctx := context.Background()

	m, err := r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "On it", ComplaintID: "C9",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, ConversationID("S1", "A1", "C9"), m.ConversationID)
	assert.Equal(t, models.MsgText, m.MessageType)
	assert.False(t, m.IsEdited)

	all := pushes.all()
	require.Len(t, all, 1)
	assert.Equal(t, "A1", all[0].RecipientID)
	assert.Equal(t, "new_message", all[0].Event)
	pushed, ok := all[0].Payload.(*models.ChatMessage)
	require.True(t, ok)
	assert.Equal(t, m.ID, pushed.ID)
}

func TestGetConversationScenario(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "On it", ComplaintID: "C9",
	})
	require.NoError(t, err)

	msgs, err := r.GetConversation(ctx, "C9", "A1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "S1", msgs[0].SenderID)
	assert.Equal(t, models.RoleStaff, msgs[0].SenderRole)
	assert.Equal(t, "A1", msgs[0].ReceiverID)
	assert.Equal(t, models.RoleAdmin, msgs[0].ReceiverRole)
	assert.Equal(t, "On it", msgs[0].Body)
	assert.Equal(t, "Ravi", msgs[0].SenderName)
	assert.Equal(t, "Meera", msgs[0].ReceiverName)
}

func TestGetConversationOrderedAscending(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	for _, body := range []string{"first", "second", "third"} {
		_, err := r.SendMessage(ctx, SendMessageInput{
			SenderID: "S1", SenderRole: models.RoleStaff,
			ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
			Body: body, ComplaintID: "C9",
		})
		require.NoError(t, err)
	}
	msgs, err := r.GetConversation(ctx, "C9", "A1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)
	assert.Equal(t, "third", msgs[2].Body)
}

func TestSoftDeleteIsPerViewer(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	m, err := r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "oops", ComplaintID: "C9",
	})
	require.NoError(t, err)

	require.NoError(t, r.DeleteMessageFor(ctx, m.ID, models.Actor{ID: "A1", Role: models.RoleAdmin}))

	// deleted for the admin's view
	adminView, err := r.GetConversation(ctx, "C9", "A1")
	require.NoError(t, err)
	assert.Empty(t, adminView)

	// still visible to the sender
	staffView, err := r.GetConversation(ctx, "C9", "S1")
	require.NoError(t, err)
	assert.Len(t, staffView, 1)
}

func TestSoftDeleteRequiresParticipant(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	m, err := r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "private", ComplaintID: "C9",
	})
	require.NoError(t, err)

	err = r.DeleteMessageFor(ctx, m.ID, models.Actor{ID: "S2", Role: models.RoleStaff})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestEditMessageOnlyBySender(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	m, err := r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "typo", ComplaintID: "C9",
	})
	require.NoError(t, err)

	edited, err := r.EditMessage(ctx, m.ID, "S1", "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", edited.Body)
	assert.True(t, edited.IsEdited)

	_, err = r.EditMessage(ctx, m.ID, "A1", "hijack")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = r.EditMessage(ctx, m.ID, "S1", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestHistorySinceCursor(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	first, err := r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "early",
	})
	require.NoError(t, err)
	_, err = r.SendMessage(ctx, SendMessageInput{
		SenderID: "A1", SenderRole: models.RoleAdmin,
		ReceiverID: "S1", ReceiverRole: models.RoleStaff,
		Body: "late",
	})
	require.NoError(t, err)

	conv := ConversationID("S1", "A1", "")
	all, err := r.History(ctx, conv, "A1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tail, err := r.History(ctx, conv, "A1", first.CreatedAt)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "late", tail[0].Body)
}

func TestMarkConversationRead(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := r.SendMessage(ctx, SendMessageInput{
		SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin,
		Body: "ping",
	})
	require.NoError(t, err)

	conv := ConversationID("S1", "A1", "")
	modified, err := r.MarkConversationRead(ctx, conv, "A1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, modified)

	// idempotent
	modified, err = r.MarkConversationRead(ctx, conv, "A1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, modified)
}
