package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	platformredis "brokerage/internal/platform/redis"
	"brokerage/internal/storage"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions in Redis with a TTL matching the session
// expiry, so revocation survives process restarts and is shared between
// replicas.
type RedisSessionStore struct {
	client *platformredis.Client
}

func NewRedisSessionStore(client *platformredis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

type redisSession struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *RedisSessionStore) Put(ctx context.Context, session Session) error {
	payload, err := json.Marshal(redisSession{
		ID:        session.ID,
		Username:  session.Username,
		Role:      string(session.Role),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, storage.ErrNotFound
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return Session{
		ID:        rs.ID,
		Username:  rs.Username,
		Role:      Role(rs.Role),
		CreatedAt: rs.CreatedAt,
		ExpiresAt: rs.ExpiresAt,
	}, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}

func (s *RedisSessionStore) IsSessionActive(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}
