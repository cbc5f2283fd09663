package registry

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/notification-service/pkg/logger"
)

func TestRegisterAndSessionsFor(t *testing.T) {
	r := New(logger.Nop())

	s1 := NewSession("s1", "u1")
	s2 := NewSession("s2", "u1")
	r.Register(s1)
	r.Register(s2)

	assert.ElementsMatch(t, []string{"s1", "s2"}, r.SessionsFor("u1"))
	assert.Empty(t, r.SessionsFor("u2"))
}

func TestRegisterIdempotent(t *testing.T) {
	r := New(logger.Nop())
	s := NewSession("s1", "u1")
	r.Register(s)
	r.Register(s)
	assert.Len(t, r.SessionsFor("u1"), 1)
}

func TestUnregister(t *testing.T) {
	r := New(logger.Nop())
	s := NewSession("s1", "u1")
	r.Register(s)
	r.Unregister("s1")
	assert.Empty(t, r.SessionsFor("u1"))

	// unknown session is a no-op
	r.Unregister("missing")
}

func TestPushReachesAllSessionsOfRecipient(t *testing.T) {
	r := New(logger.Nop())
	s1 := NewSession("s1", "u1")
	s2 := NewSession("s2", "u1")
	other := NewSession("s3", "u2")
	r.Register(s1)
	r.Register(s2)
	r.Register(other)

	r.Push("u1", EventNewNotification, map[string]string{"id": "n1"})

	for _, s := range []*Session{s1, s2} {
		select {
		case frame := <-s.Outbox():
			var env struct {
				Event string            `json:"event"`
				Data  map[string]string `json:"data"`
			}
			require.NoError(t, json.Unmarshal(frame, &env))
			assert.Equal(t, EventNewNotification, env.Event)
			assert.Equal(t, "n1", env.Data["id"])
		default:
			t.Fatalf("session %s received nothing", s.ID)
		}
	}
	select {
	case <-other.Outbox():
		t.Fatal("unrelated recipient received the push")
	default:
	}
}

func TestPushToRecipientWithoutSessionsIsSilent(t *testing.T) {
	r := New(logger.Nop())
	// must not panic or error
	r.Push("nobody", EventNewMessage, map[string]string{"id": "m1"})
}

func TestSlowSessionDoesNotBlockOthers(t *testing.T) {
	r := New(logger.Nop())
	slow := NewSession("slow", "u1")
	fast := NewSession("fast", "u1")
	r.Register(slow)
	r.Register(fast)

	// fill the slow session's buffer
	for i := 0; i < sendBuffer; i++ {
		r.Push("u1", EventNewNotification, map[string]int{"i": i})
		<-fast.Outbox()
	}
	// next push drops on slow but still lands on fast
	r.Push("u1", EventNewNotification, map[string]string{"id": "last"})
	select {
	case <-fast.Outbox():
	default:
		t.Fatal("fast session starved by slow sibling")
	}
}

func TestConcurrentRegisterPushUnregister(t *testing.T) {
	r := New(logger.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recipient := fmt.Sprintf("u%d", i%10)
			s := NewSession(fmt.Sprintf("s%d", i), recipient)
			r.Register(s)
			r.Push(recipient, EventNewMessage, map[string]int{"i": i})
			r.Unregister(s.ID)
		}(i)
	}
	wg.Wait()
	for i := 0; i < 10; i++ {
		assert.Empty(t, r.SessionsFor(fmt.Sprintf("u%d", i)))
	}
}

func TestSessionCloseIsSafeTwice(t *testing.T) {
	s := NewSession("s1", "u1")
	s.Close()
	s.Close()
	_, ok := <-s.Outbox()
	assert.False(t, ok)
}
