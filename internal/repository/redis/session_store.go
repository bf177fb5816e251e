package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mamadbah2/salestracker/internal/domain/models"
)

const sessionKeyPrefix = "session:"

// NewClient connects to Redis and verifies the connection.
func NewClient(addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// SessionStore keeps session tokens mapped to their signed-in user.
type SessionStore struct {
	client *goredis.Client
}

// NewSessionStore wraps a connected client.
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Save stores the user under token for ttl.
func (s *SessionStore) Save(ctx context.Context, token string, user models.SessionUser, ttl time.Duration) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Load returns the user for token, or ErrNotFound when the session is
// missing or expired.
func (s *SessionStore) Load(ctx context.Context, token string) (models.SessionUser, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return models.SessionUser{}, models.ErrNotFound
		}
		return models.SessionUser{}, fmt.Errorf("failed to get session: %w", err)
	}

	var user models.SessionUser
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return models.SessionUser{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return user, nil
}

// Delete removes the session. Missing sessions are not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
