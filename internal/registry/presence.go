package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Presence mirrors session liveness into Redis so other instances and the
// presence endpoints can see who is connected. The in-process registry stays
// the source of routing truth; these keys expire on their own if a process
// dies without cleaning up.
type Presence struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type sessionMeta struct {
	SessionID   string `json:"session_id"`
	ConnectedAt int64  `json:"connected_at"`
}

func NewPresence(client *redis.Client, prefix string, ttl time.Duration) *Presence {
	if prefix == "" {
		prefix = "notify"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Presence{client: client, prefix: prefix, ttl: ttl}
}

func (p *Presence) key(recipientID string) string {
	return fmt.Sprintf("%s:sessions:%s", p.prefix, recipientID)
}

func (p *Presence) SessionUp(ctx context.Context, s *Session) error {
	meta, _ := json.Marshal(sessionMeta{SessionID: s.ID, ConnectedAt: s.ConnectedAt.Unix()})
	key := p.key(s.RecipientID)
	if err := p.client.SAdd(ctx, key, meta).Err(); err != nil {
		return err
	}
	return p.client.Expire(ctx, key, p.ttl).Err()
}

func (p *Presence) SessionDown(ctx context.Context, s *Session) error {
	key := p.key(s.RecipientID)
	members, err := p.client.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	for _, m := range members {
		var meta sessionMeta
		if json.Unmarshal([]byte(m), &meta) == nil && meta.SessionID == s.ID {
			if err := p.client.SRem(ctx, key, m).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Online reports whether the recipient has any mirrored session, on this
// instance or another.
func (p *Presence) Online(ctx context.Context, recipientID string) (bool, error) {
	n, err := p.client.SCard(ctx, p.key(recipientID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
