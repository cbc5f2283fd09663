package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/notification-service/internal/models"
)

func TestMemoryNotificationListNewestFirstAndFiltered(t *testing.T) {
	s := NewMemoryNotificationStore()
	ctx := context.Background()

	var last *models.Notification
	for _, kind := range []models.NotificationKind{models.NotifInfo, models.NotifUpdate, models.NotifInfo} {
		n, err := s.Create(ctx, &models.Notification{RecipientID: "u1", Kind: kind, Message: "m"})
		require.NoError(t, err)
		last = n
	}

	all, err := s.List(ctx, "u1", models.NotificationFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, last.ID, all[0].ID)

	infoOnly, err := s.List(ctx, "u1", models.NotificationFilter{Kind: models.NotifInfo}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, infoOnly, 2)

	require.NoError(t, s.MarkRead(ctx, "u1", last.ID))
	unread := false
	readOnly, err := s.List(ctx, "u1", models.NotificationFilter{IsRead: &[]bool{true}[0]}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, readOnly, 1)
	unreadOnly, err := s.List(ctx, "u1", models.NotificationFilter{IsRead: &unread}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, unreadOnly, 2)
}

func TestMemoryNotificationPagination(t *testing.T) {
	s := NewMemoryNotificationStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.Create(ctx, &models.Notification{RecipientID: "u1", Kind: models.NotifInfo, Message: "m"})
		require.NoError(t, err)
	}
	page1, err := s.List(ctx, "u1", models.NotificationFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	page3, err := s.List(ctx, "u1", models.NotificationFilter{}, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	page4, err := s.List(ctx, "u1", models.NotificationFilter{}, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestMemoryMessageSoftDeleteSetSemantics(t *testing.T) {
	s := NewMemoryMessageStore()
	ctx := context.Background()

	m, err := s.Insert(ctx, &models.ChatMessage{
		ConversationID: "c", SenderID: "S1", SenderRole: models.RoleStaff,
		ReceiverID: "A1", ReceiverRole: models.RoleAdmin, Body: "b", MessageType: models.MsgText,
	})
	require.NoError(t, err)

	actor := models.Actor{ID: "A1", Role: models.RoleAdmin}
	require.NoError(t, s.DeleteFor(ctx, m.ID, actor))
	require.NoError(t, s.DeleteFor(ctx, m.ID, actor)) // set-valued: no duplicate entry

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, got.DeletedBy, 1)
	assert.True(t, got.DeletedFor("A1"))
	assert.False(t, got.DeletedFor("S1"))
}
