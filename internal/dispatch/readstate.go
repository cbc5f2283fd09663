package dispatch

import (
	"context"

	"github.com/civicdesk/notification-service/internal/models"
)

// Read-state operations are pure store mutations scoped to the requesting
// recipient. The store rejects attempts to touch another recipient's rows.

func (e *Engine) List(ctx context.Context, recipientID string, f models.NotificationFilter, page, pageSize int64) ([]models.Notification, error) {
	return e.store.List(ctx, recipientID, f, page, pageSize)
}

func (e *Engine) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return e.store.CountUnread(ctx, recipientID)
}

func (e *Engine) MarkRead(ctx context.Context, recipientID, id string) error {
	return e.store.MarkRead(ctx, recipientID, id)
}

func (e *Engine) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return e.store.MarkAllRead(ctx, recipientID)
}

func (e *Engine) Delete(ctx context.Context, recipientID, id string) error {
	return e.store.Delete(ctx, recipientID, id)
}

func (e *Engine) ClearAll(ctx context.Context, recipientID string) (int64, error) {
	return e.store.ClearAll(ctx, recipientID)
}

func (e *Engine) StatsByKind(ctx context.Context, recipientID string) ([]models.KindStat, error) {
	return e.store.StatsByKind(ctx, recipientID)
}
