package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/notification-service/internal/apperr"
	"github.com/civicdesk/notification-service/internal/metrics"
	"github.com/civicdesk/notification-service/internal/models"
	"github.com/civicdesk/notification-service/internal/registry"
)

// NotificationStore is the durable side of the pipeline. Satisfied by
// repository.NotificationRepo and the in-memory store.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	List(ctx context.Context, recipientID string, f models.NotificationFilter, page, pageSize int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, recipientID, id string) error
	ClearAll(ctx context.Context, recipientID string) (int64, error)
	StatsByKind(ctx context.Context, recipientID string) ([]models.KindStat, error)
}

// Resolver maps a recipient ref to contact channels.
type Resolver interface {
	Resolve(ctx context.Context, ref models.RecipientRef) (*models.Contact, error)
}

// Pusher is the live channel. Satisfied by *registry.Registry.
type Pusher interface {
	Push(recipientID, event string, payload any)
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Engine runs the notification pipeline: resolve, persist, live-push, then
// fire the secondary channels without blocking the caller.
type Engine struct {
	store     NotificationStore
	directory Resolver
	pusher    Pusher
	email     EmailSender
	sms       SMSSender
	log       *zap.SugaredLogger

	channelTimeout time.Duration
}

func NewEngine(store NotificationStore, dir Resolver, pusher Pusher, email EmailSender, sms SMSSender, channelTimeout time.Duration, log *zap.SugaredLogger) *Engine {
	if channelTimeout <= 0 {
		channelTimeout = 10 * time.Second
	}
	return &Engine{
		store:          store,
		directory:      dir,
		pusher:         pusher,
		email:          email,
		sms:            sms,
		channelTimeout: channelTimeout,
		log:            log,
	}
}

// Notify delivers one notification. The persisted record is the contract:
// once Notify returns without error the notification exists in the store.
// Live push and the secondary channels are best-effort on top of that.
func (e *Engine) Notify(ctx context.Context, ref models.RecipientRef, kind models.NotificationKind, message, subject string) (*models.Notification, error) {
	if message == "" {
		return nil, apperr.Validationf("empty notification message")
	}
	if !kind.Valid() {
		return nil, apperr.Validationf("unknown notification kind %q", kind)
	}

	// An unresolvable recipient is a caller error; nothing is persisted.
	contact, err := e.directory.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	n, err := e.store.Create(ctx, &models.Notification{
		RecipientID: contact.ID,
		Kind:        kind,
		Message:     message,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	metrics.NotificationsDispatched.WithLabelValues(string(kind)).Inc()

	// Push strictly after the store write so a live event can never point at
	// a record a fetch would miss.
	e.pusher.Push(contact.ID, registry.EventNewNotification, n)

	e.fireSecondary(contact, n, subject)
	return n, nil
}

// NotifyResult is one recipient's outcome of a bulk notify.
type NotifyResult struct {
	RecipientID  string               `json:"recipient_id"`
	Notification *models.Notification `json:"notification,omitempty"`
	Err          error                `json:"-"`
	Error        string               `json:"error,omitempty"`
}

// NotifyMany fans out per recipient. One failing recipient never blocks the
// rest; the caller gets every outcome.
func (e *Engine) NotifyMany(ctx context.Context, refs []models.RecipientRef, kind models.NotificationKind, message, subject string) []NotifyResult {
	out := make([]NotifyResult, 0, len(refs))
	for _, ref := range refs {
		res := NotifyResult{RecipientID: ref.ID}
		n, err := e.Notify(ctx, ref, kind, message, subject)
		if err != nil {
			res.Err = err
			res.Error = err.Error()
			e.log.Warnw("bulk notify recipient failed", "recipient_id", ref.ID, "error", err)
		} else {
			res.Notification = n
		}
		out = append(out, res)
	}
	return out
}

// fireSecondary launches email and SMS as detached tasks. Each channel has a
// bounded timeout and one attempt; failures are logged and counted, never
// surfaced or retried.
func (e *Engine) fireSecondary(contact *models.Contact, n *models.Notification, subject string) {
	if subject == "" {
		subject = defaultSubject(n.Kind)
	}
	if contact.Email != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), e.channelTimeout)
			defer cancel()
			if err := e.email.SendEmail(ctx, contact.Email, subject, emailBody(contact.Name, n.Message)); err != nil {
				metrics.ChannelFailures.WithLabelValues("email").Inc()
				e.log.Warnw("email delivery failed", "notification_id", n.ID, "to", contact.Email, "error", err)
			}
		}()
	}
	if contact.Phone != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), e.channelTimeout)
			defer cancel()
			if err := e.sms.SendSMS(ctx, contact.Phone, n.Message); err != nil {
				metrics.ChannelFailures.WithLabelValues("sms").Inc()
				e.log.Warnw("sms delivery failed", "notification_id", n.ID, "to", contact.Phone, "error", err)
			}
		}()
	}
}

func defaultSubject(kind models.NotificationKind) string {
	switch kind {
	case models.NotifNewComplaint:
		return "New complaint received"
	case models.NotifUpdate:
		return "Your complaint was updated"
	default:
		return "CivicDesk notification"
	}
}

func emailBody(name, message string) string {
	return fmt.Sprintf("<p>Hello %s,</p><p>%s</p>", name, message)
}
