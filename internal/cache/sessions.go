package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Principal is the user a bearer token belongs to.
type Principal struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// RedisSessions resolves bearer tokens from session:<token> records written by
// the identity service.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func (s *RedisSessions) Lookup(ctx context.Context, token string) (*Principal, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(data, &p); err != nil || p.UserID == "" {
		return nil, ErrSessionNotFound
	}
	return &p, nil
}

// Put records a session. ttl of zero keeps it until deleted.
func (s *RedisSessions) Put(ctx context.Context, token string, p Principal, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
