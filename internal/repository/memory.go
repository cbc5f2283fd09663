package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicdesk/notification-service/internal/apperr"
	"github.com/civicdesk/notification-service/internal/models"
)

// In-memory stores with the same contracts as the Mongo repos. Used by tests
// and by local development without a database.

type MemoryNotificationStore struct {
	mu    sync.Mutex
	items map[string]*models.Notification
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{items: make(map[string]*models.Notification)}
}

func (s *MemoryNotificationStore) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.New().String()
	n.IsRead = false
	n.CreatedAt = time.Now().UTC()
	cp := *n
	s.items[n.ID] = &cp
	return n, nil
}

func (s *MemoryNotificationStore) List(_ context.Context, recipientID string, f models.NotificationFilter, page, pageSize int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.items {
		if n.RecipientID != recipientID {
			continue
		}
		if f.IsRead != nil && n.IsRead != *f.IsRead {
			continue
		}
		if f.Kind != "" && n.Kind != f.Kind {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= int64(len(out)) {
		return nil, nil
	}
	end := start + pageSize
	if end > int64(len(out)) {
		end = int64(len(out))
	}
	return out[start:end], nil
}

func (s *MemoryNotificationStore) CountUnread(_ context.Context, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, it := range s.items {
		if it.RecipientID == recipientID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *MemoryNotificationStore) MarkRead(_ context.Context, recipientID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return apperr.NotFoundf("notification %s", id)
	}
	if n.RecipientID != recipientID {
		return apperr.Unauthorizedf("notification %s is not owned by %s", id, recipientID)
	}
	n.IsRead = true
	return nil
}

func (s *MemoryNotificationStore) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var modified int64
	for _, n := range s.items {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			modified++
		}
	}
	return modified, nil
}

func (s *MemoryNotificationStore) Delete(_ context.Context, recipientID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return apperr.NotFoundf("notification %s", id)
	}
	if n.RecipientID != recipientID {
		return apperr.Unauthorizedf("notification %s is not owned by %s", id, recipientID)
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryNotificationStore) ClearAll(_ context.Context, recipientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, n := range s.items {
		if n.RecipientID == recipientID {
			delete(s.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryNotificationStore) StatsByKind(_ context.Context, recipientID string) ([]models.KindStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKind := make(map[models.NotificationKind]*models.KindStat)
	for _, n := range s.items {
		if n.RecipientID != recipientID {
			continue
		}
		st, ok := byKind[n.Kind]
		if !ok {
			st = &models.KindStat{Kind: n.Kind}
			byKind[n.Kind] = st
		}
		st.Count++
		if !n.IsRead {
			st.Unread++
		}
	}
	out := make([]models.KindStat, 0, len(byKind))
	for _, st := range byKind {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

type MemoryMessageStore struct {
	mu    sync.Mutex
	items map[string]*models.ChatMessage
	seq   int
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{items: make(map[string]*models.ChatMessage)}
}

func (s *MemoryMessageStore) Insert(_ context.Context, m *models.ChatMessage) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	now := time.Now().UTC().Add(time.Duration(s.seq) * time.Nanosecond)
	m.ID = uuid.New().String()
	m.CreatedAt = now
	m.UpdatedAt = now
	cp := *m
	s.items[m.ID] = &cp
	return m, nil
}

func (s *MemoryMessageStore) Get(_ context.Context, id string) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFoundf("message %s", id)
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryMessageStore) ListConversation(_ context.Context, conversationID string, since time.Time) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range s.items {
		if m.ConversationID != conversationID {
			continue
		}
		if !since.IsZero() && !m.CreatedAt.After(since) {
			continue
		}
		out = append(out, *m)
	}
	sortAscending(out)
	return out, nil
}

func (s *MemoryMessageStore) ListByComplaint(_ context.Context, complaintID string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range s.items {
		if m.ComplaintID == complaintID {
			out = append(out, *m)
		}
	}
	sortAscending(out)
	return out, nil
}

func (s *MemoryMessageStore) Edit(_ context.Context, id, actorID, body string) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFoundf("message %s", id)
	}
	if m.SenderID != actorID {
		return nil, apperr.Unauthorizedf("message %s was not sent by %s", id, actorID)
	}
	m.Body = body
	m.IsEdited = true
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	return &cp, nil
}

func (s *MemoryMessageStore) DeleteFor(_ context.Context, id string, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return apperr.NotFoundf("message %s", id)
	}
	if m.SenderID != actor.ID && m.ReceiverID != actor.ID {
		return apperr.Unauthorizedf("message %s does not involve %s", id, actor.ID)
	}
	if !m.DeletedFor(actor.ID) {
		m.DeletedBy = append(m.DeletedBy, actor)
	}
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryMessageStore) MarkConversationRead(_ context.Context, conversationID, receiverID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var modified int64
	for _, m := range s.items {
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead = true
			modified++
		}
	}
	return modified, nil
}

func sortAscending(msgs []models.ChatMessage) {
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
}
