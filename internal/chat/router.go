package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/notification-service/internal/apperr"
	"github.com/civicdesk/notification-service/internal/metrics"
	"github.com/civicdesk/notification-service/internal/models"
	"github.com/civicdesk/notification-service/internal/registry"
)

// MessageStore is the durable chat store. Satisfied by
// repository.MessageRepo and the in-memory store.
type MessageStore interface {
	Insert(ctx context.Context, m *models.ChatMessage) (*models.ChatMessage, error)
	Get(ctx context.Context, id string) (*models.ChatMessage, error)
	ListConversation(ctx context.Context, conversationID string, since time.Time) ([]models.ChatMessage, error)
	ListByComplaint(ctx context.Context, complaintID string) ([]models.ChatMessage, error)
	Edit(ctx context.Context, id, actorID, body string) (*models.ChatMessage, error)
	DeleteFor(ctx context.Context, id string, actor models.Actor) error
	MarkConversationRead(ctx context.Context, conversationID, receiverID string) (int64, error)
}

type Resolver interface {
	Resolve(ctx context.Context, ref models.RecipientRef) (*models.Contact, error)
}

type Pusher interface {
	Push(recipientID, event string, payload any)
}

// ConversationID derives the stable id for a participant pair, optionally
// scoped to one complaint. Order-independent: the pair is sorted before
// concatenation, so (a,b) and (b,a) share a conversation. Distinct complaint
// ids give distinct conversations for the same pair.
func ConversationID(participantA, participantB, complaintID string) string {
	lo, hi := participantA, participantB
	if lo > hi {
		lo, hi = hi, lo
	}
	id := lo + "_" + hi
	if complaintID != "" {
		id += "_" + complaintID
	}
	return id
}

// Router validates, persists and fans out staff/admin chat messages.
type Router struct {
	store     MessageStore
	directory Resolver
	pusher    Pusher
	log       *zap.SugaredLogger
}

func NewRouter(store MessageStore, dir Resolver, pusher Pusher, log *zap.SugaredLogger) *Router {
	return &Router{store: store, directory: dir, pusher: pusher, log: log}
}

type SendMessageInput struct {
	SenderID     string             `json:"sender_id"`
	SenderRole   models.ChatRole    `json:"sender_role"`
	ReceiverID   string             `json:"receiver_id" validate:"required"`
	ReceiverRole models.ChatRole    `json:"receiver_role"`
	Body         string             `json:"body" validate:"required"`
	ComplaintID  string             `json:"complaint_id,omitempty"`
	MessageType  models.MessageType `json:"message_type,omitempty"`
	FileURL      string             `json:"file_url,omitempty"`
}

// SendMessage persists the message and pushes a "new_message" event to the
// receiver's live sessions. Who may call this at all is the auth layer's
// concern; the router enforces message shape and the staff/admin role pair.
func (r *Router) SendMessage(ctx context.Context, in SendMessageInput) (*models.ChatMessage, error) {
	if in.Body == "" {
		return nil, apperr.Validationf("empty message body")
	}
	if in.ReceiverID == "" {
		return nil, apperr.Validationf("missing receiver id")
	}
	if !in.SenderRole.Valid() || !in.ReceiverRole.Valid() {
		return nil, apperr.Validationf("chat is restricted to Staff and Admin roles")
	}
	msgType := in.MessageType
	if msgType == "" {
		msgType = models.MsgText
	}
	if !msgType.Valid() {
		return nil, apperr.Validationf("unknown message type %q", msgType)
	}

	m := &models.ChatMessage{
		ConversationID: ConversationID(in.SenderID, in.ReceiverID, in.ComplaintID),
		SenderID:       in.SenderID,
		SenderRole:     in.SenderRole,
		ReceiverID:     in.ReceiverID,
		ReceiverRole:   in.ReceiverRole,
		ComplaintID:    in.ComplaintID,
		Body:           in.Body,
		MessageType:    msgType,
		FileURL:        in.FileURL,
	}
	saved, err := r.store.Insert(ctx, m)
	if err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	// Push only after the write: a client that sees the event and refetches
	// must find the record.
	r.pusher.Push(saved.ReceiverID, registry.EventNewMessage, saved)
	return saved, nil
}

// ConversationMessage joins a message with display names from the directory.
type ConversationMessage struct {
	models.ChatMessage
	SenderName   string `json:"sender_name,omitempty"`
	ReceiverName string `json:"receiver_name,omitempty"`
}

// GetConversation returns the complaint's messages ascending by creation
// time, filtered down to the requesting actor's view (per-viewer soft
// delete) and labeled with display names.
func (r *Router) GetConversation(ctx context.Context, complaintID, actorID string) ([]ConversationMessage, error) {
	if complaintID == "" {
		return nil, apperr.Validationf("missing complaint id")
	}
	msgs, err := r.store.ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	out := make([]ConversationMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.DeletedFor(actorID) {
			continue
		}
		out = append(out, ConversationMessage{
			ChatMessage:  m,
			SenderName:   r.displayName(ctx, names, m.SenderID),
			ReceiverName: r.displayName(ctx, names, m.ReceiverID),
		})
	}
	return out, nil
}

// History returns a conversation by id for incremental catch-up, filtered to
// the actor's view.
func (r *Router) History(ctx context.Context, conversationID, actorID string, since time.Time) ([]models.ChatMessage, error) {
	msgs, err := r.store.ListConversation(ctx, conversationID, since)
	if err != nil {
		return nil, err
	}
	out := msgs[:0]
	for _, m := range msgs {
		if !m.DeletedFor(actorID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Router) EditMessage(ctx context.Context, id, actorID, body string) (*models.ChatMessage, error) {
	if body == "" {
		return nil, apperr.Validationf("empty message body")
	}
	return r.store.Edit(ctx, id, actorID, body)
}

func (r *Router) DeleteMessageFor(ctx context.Context, id string, actor models.Actor) error {
	return r.store.DeleteFor(ctx, id, actor)
}

func (r *Router) MarkConversationRead(ctx context.Context, conversationID, receiverID string) (int64, error) {
	return r.store.MarkConversationRead(ctx, conversationID, receiverID)
}

// displayName is best-effort: a recipient that no longer resolves keeps the
// message visible with an empty name rather than failing the listing.
func (r *Router) displayName(ctx context.Context, cache map[string]string, id string) string {
	if name, ok := cache[id]; ok {
		return name
	}
	c, err := r.directory.Resolve(ctx, models.Untagged(id))
	if err != nil {
		cache[id] = ""
		return ""
	}
	cache[id] = c.Name
	return c.Name
}
