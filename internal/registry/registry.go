package registry

import (
	"encoding/json"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"

	"github.com/civicdesk/notification-service/internal/metrics"
)

// Wire event names consumed by the dashboards.
const (
	EventNewNotification = "new_notification"
	EventNewMessage      = "new_message"
)

// Envelope is the wire format for pushed events.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

const shardCount = 32

// Registry tracks which live sessions belong to which recipient. Recipients
// are spread over locked shards so that unrelated recipients' pushes never
// contend; the session index is a lock-free concurrent map.
type Registry struct {
	shards    [shardCount]shard
	bySession sync.Map // sessionID -> *Session
	log       *zap.SugaredLogger
}

type shard struct {
	mu          sync.RWMutex
	byRecipient map[string]map[string]*Session
}

func New(log *zap.SugaredLogger) *Registry {
	r := &Registry{log: log}
	for i := range r.shards {
		r.shards[i].byRecipient = make(map[string]map[string]*Session)
	}
	return r
}

func (r *Registry) shardFor(recipientID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipientID))
	return &r.shards[h.Sum32()%shardCount]
}

// Register associates a session with a recipient. Idempotent: re-registering
// the same session id for the same recipient is a no-op.
func (r *Registry) Register(s *Session) {
	if _, loaded := r.bySession.LoadOrStore(s.ID, s); loaded {
		return
	}
	sh := r.shardFor(s.RecipientID)
	sh.mu.Lock()
	set, ok := sh.byRecipient[s.RecipientID]
	if !ok {
		set = make(map[string]*Session)
		sh.byRecipient[s.RecipientID] = set
	}
	set[s.ID] = s
	sh.mu.Unlock()
	metrics.ActiveSessions.Inc()
	r.log.Infow("session registered", "session_id", s.ID, "recipient_id", s.RecipientID)
}

// Unregister removes a session; no-op when the session is unknown.
func (r *Registry) Unregister(sessionID string) {
	v, loaded := r.bySession.LoadAndDelete(sessionID)
	if !loaded {
		return
	}
	s := v.(*Session)
	sh := r.shardFor(s.RecipientID)
	sh.mu.Lock()
	if set, ok := sh.byRecipient[s.RecipientID]; ok {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(sh.byRecipient, s.RecipientID)
		}
	}
	sh.mu.Unlock()
	s.Close()
	metrics.ActiveSessions.Dec()
	r.log.Infow("session unregistered", "session_id", sessionID, "recipient_id", s.RecipientID)
}

// SessionsFor returns the ids of the recipient's live sessions.
func (r *Registry) SessionsFor(recipientID string) []string {
	sh := r.shardFor(recipientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	set := sh.byRecipient[recipientID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Push delivers an event to every live session of the recipient.
// Fire-and-forget: a full or dead session drops its copy without affecting
// the others and nothing is reported to the caller.
func (r *Registry) Push(recipientID, event string, payload any) {
	b, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		r.log.Errorw("marshal push payload", "event", event, "error", err)
		return
	}
	sh := r.shardFor(recipientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	for _, s := range sh.byRecipient[recipientID] {
		if s.deliver(b) {
			metrics.PushesDelivered.Inc()
		} else {
			metrics.PushesDropped.Inc()
			r.log.Debugw("push dropped, session backed up", "session_id", s.ID, "event", event)
		}
	}
}
