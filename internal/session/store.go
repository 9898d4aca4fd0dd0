// Package session tracks logged-out session tokens in Redis so a bearer token
// stops working once its owner logs out.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by Revoke when no Redis client is configured.
var ErrUnavailable = errors.New("session store unavailable")

// Store records revoked token ids until the token would have expired anyway.
type Store struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewStore builds a Store. client may be nil, in which case nothing is ever
// revoked.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "helpdesk"
	}
	return &Store{client: client, prefix: prefix, now: time.Now}
}

func (s *Store) key(tokenID string) string {
	return fmt.Sprintf("%s:session:revoked:%s", s.prefix, tokenID)
}

// Revoke marks tokenID as logged out. Tokens already past expiresAt are
// ignored since the token parser rejects them.
func (s *Store) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s == nil || s.client == nil {
		return ErrUnavailable
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether tokenID was logged out.
func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
