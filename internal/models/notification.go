package models

import "time"

// NotificationKind classifies a notification for dashboard rendering and
// per-kind statistics.
type NotificationKind string

const (
	NotifInfo         NotificationKind = "info"
	NotifSuccess      NotificationKind = "success"
	NotifWarning      NotificationKind = "warning"
	NotifError        NotificationKind = "error"
	NotifUpdate       NotificationKind = "update"
	NotifNewComplaint NotificationKind = "new_complaint"
)

func (k NotificationKind) Valid() bool {
	switch k {
	case NotifInfo, NotifSuccess, NotifWarning, NotifError, NotifUpdate, NotifNewComplaint:
		return true
	}
	return false
}

type Notification struct {
	ID          string           `bson:"_id,omitempty" json:"id"`
	RecipientID string           `bson:"recipient_id" json:"recipient_id"`
	Kind        NotificationKind `bson:"kind" json:"kind"`
	Message     string           `bson:"message" json:"message"`
	IsRead      bool             `bson:"is_read" json:"is_read"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
}

// NotificationFilter narrows a listing. Nil IsRead means both states.
type NotificationFilter struct {
	IsRead *bool
	Kind   NotificationKind
}

// KindStat is one row of the per-kind aggregation used by dashboard badges.
type KindStat struct {
	Kind   NotificationKind `bson:"_id" json:"kind"`
	Count  int64            `bson:"count" json:"count"`
	Unread int64            `bson:"unread" json:"unread"`
}
