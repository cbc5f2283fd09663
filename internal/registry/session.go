package registry

import (
	"sync"
	"time"
)

// Session is one live transport connection claimed by a recipient. It is
// never persisted: the registry is rebuilt from scratch on restart, which is
// why durable delivery can never depend on it.
type Session struct {
	ID          string
	RecipientID string
	ConnectedAt time.Time

	send      chan []byte
	closeOnce sync.Once
}

const sendBuffer = 256

func NewSession(id, recipientID string) *Session {
	return &Session{
		ID:          id,
		RecipientID: recipientID,
		ConnectedAt: time.Now().UTC(),
		send:        make(chan []byte, sendBuffer),
	}
}

// Outbox is drained by the transport's write pump.
func (s *Session) Outbox() <-chan []byte {
	return s.send
}

// deliver enqueues without blocking. A slow or dead session drops the frame;
// the client's reconciliation poll self-heals the gap.
func (s *Session) deliver(b []byte) bool {
	select {
	case s.send <- b:
		return true
	default:
		return false
	}
}

// Close releases the outbox. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.send) })
}
