package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReplayGuard tracks processed payment sessions and rate-limits login
// attempts in Redis.
type RedisReplayGuard struct {
	client *redis.Client
}

// NewRedisReplayGuard creates a new Redis-backed replay guard
func NewRedisReplayGuard(client *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{client: client}
}

const (
	processedSessionTTL = 24 * time.Hour
	loginWindow         = time.Minute
	loginAttemptsLimit  = 10
)

func sessionKey(sessionID string) string {
	return fmt.Sprintf("payment_session:%s", sessionID)
}

// MarkProcessed records the session id. It returns false when the session
// was already recorded, i.e. the webhook is a replay.
func (g *RedisReplayGuard) MarkProcessed(ctx context.Context, sessionID string) (bool, error) {
	return g.client.SetNX(ctx, sessionKey(sessionID), time.Now().Unix(), processedSessionTTL).Result()
}

// Unmark releases a recorded session so a retried delivery is processed
// again. Used when recording fails after the session was marked.
func (g *RedisReplayGuard) Unmark(ctx context.Context, sessionID string) error {
	return g.client.Del(ctx, sessionKey(sessionID)).Err()
}

// AllowLogin counts a login attempt for the email and reports whether the
// attempt is within the rate limit.
func (g *RedisReplayGuard) AllowLogin(ctx context.Context, email string) (bool, error) {
	key := fmt.Sprintf("login_attempts:%s", email)

	attempts, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if attempts == 1 {
		if err := g.client.Expire(ctx, key, loginWindow).Err(); err != nil {
			return false, err
		}
	}

	return attempts <= loginAttemptsLimit, nil
}
