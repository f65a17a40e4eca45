// Package session holds the transient per-client state that is not the cart
// itself: a one-shot flash message slot and a session liveness key with a
// rolling TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the opaque per-client bag of transient state.
type Store interface {
	// Flash stores a one-shot notification message for the session,
	// replacing any unconsumed one.
	Flash(ctx context.Context, sessionID, message string) error
	// ConsumeFlash returns and deletes the pending message. Returns the
	// empty string when no message is pending.
	ConsumeFlash(ctx context.Context, sessionID string) (string, error)
	// Touch refreshes the session's expiry deadline.
	Touch(ctx context.Context, sessionID string) error
	// Destroy removes all transient state for the session, ending it.
	Destroy(ctx context.Context, sessionID string) error
}

// RedisStore implements Store on redis. Keys expire with the session TTL, so
// abandoned sessions clean themselves up.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed session store with the given TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Flash(ctx context.Context, sessionID, message string) error {
	if err := s.client.Set(ctx, flashKey(sessionID), message, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store flash message: %w", err)
	}
	return nil
}

func (s *RedisStore) ConsumeFlash(ctx context.Context, sessionID string) (string, error) {
	message, err := s.client.GetDel(ctx, flashKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to consume flash message: %w", err)
	}
	return message, nil
}

func (s *RedisStore) Touch(ctx context.Context, sessionID string) error {
	if err := s.client.Set(ctx, liveKey(sessionID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, flashKey(sessionID), liveKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func flashKey(sessionID string) string {
	return "session:" + sessionID + ":flash"
}

func liveKey(sessionID string) string {
	return "session:" + sessionID + ":live"
}
