package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-portal/internal/session"
)

const sessionKeyPrefix = "portal:session:"

// SessionStore keeps portal sessions as JSON values with a TTL.
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ session.Store = (*SessionStore)(nil)

func NewSessionStore(client redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *SessionStore) Load(ctx context.Context, id string) (session.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, session.ErrNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return session.Session{}, fmt.Errorf("decode session: %w", err)
	}
	sess.Role = session.ParseRole(string(sess.Role))
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, id string, sess session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
