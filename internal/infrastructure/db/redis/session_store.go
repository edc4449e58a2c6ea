package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

// SessionStore keeps server-side sessions and OAuth code verifiers in Redis.
// Key formats:
//
//	session:<session_id>  JSON-encoded domain.Session
//	pkce:<flow_id>        code verifier
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

var _ ports.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *SessionStore) SaveVerifier(ctx context.Context, flowID, verifier string, ttl time.Duration) error {
	return s.client.Set(ctx, verifierKey(flowID), verifier, ttl).Err()
}

// TakeVerifier reads and deletes the verifier in one round trip so a
// callback URL cannot be replayed.
func (s *SessionStore) TakeVerifier(ctx context.Context, flowID string) (string, error) {
	v, err := s.client.GetDel(ctx, verifierKey(flowID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrOAuthFlowExpired
		}
		return "", fmt.Errorf("take verifier: %w", err)
	}
	return v, nil
}

func sessionKey(id string) string  { return "session:" + id }
func verifierKey(id string) string { return "pkce:" + id }
