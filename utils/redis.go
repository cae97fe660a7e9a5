package utils

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"todolist/models"
)

const redisTimeout = 5 * time.Second

// OpenRedisPool initializes a Redis connection pool
func OpenRedisPool(ctx context.Context, dsn string) (*redis.Client, error) {
	opt, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis dsn: %w", err)
	}

	// Configure connection pooling
	opt.PoolSize = 100
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func userSessionsKey(userID int64) string {
	return "user_sessions:" + strconv.FormatInt(userID, 10)
}

// StoreSession saves a session in Redis and adds it to the user's session index.
func StoreSession(ctx context.Context, client *redis.Client, session models.Session, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	sessionMap := map[string]any{
		"user_id":    strconv.FormatInt(session.UserID, 10),
		"created_at": session.CreatedAt.Format(time.RFC3339),
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
		"csrf_token": session.CSRFToken,
		"user_agent": session.UserAgent,
		"ip_address": session.IPAddress,
	}

	key := sessionKey(session.ID)
	pipe := client.TxPipeline()
	pipe.HSet(ctx, key, sessionMap)
	pipe.Expire(ctx, key, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// GetSession retrieves session details from Redis. A missing or expired
// session yields models.ErrNotFound.
func GetSession(ctx context.Context, client *redis.Client, sessionID string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(data) == 0 {
		return nil, models.ErrNotFound
	}

	userID, err := strconv.ParseInt(data["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session user id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, data["created_at"])
	if err != nil {
		return nil, fmt.Errorf("session created_at: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, data["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("session expires_at: %w", err)
	}

	session := &models.Session{
		ID:        sessionID,
		UserID:    userID,
		CSRFToken: data["csrf_token"],
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		UserAgent: data["user_agent"],
		IPAddress: data["ip_address"],
	}
	if session.Expired(time.Now()) {
		return nil, models.ErrNotFound
	}
	return session, nil
}

// DeleteSession removes a single session and its reference in the user index
func DeleteSession(ctx context.Context, client *redis.Client, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	key := sessionKey(sessionID)
	userID, err := client.HGet(ctx, key, "user_id").Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	pipe := client.TxPipeline()
	pipe.SRem(ctx, "user_sessions:"+userID, key)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CountUserSessions returns the number of indexed sessions for a user.
// Entries whose session hash already expired are pruned first.
func CountUserSessions(ctx context.Context, client *redis.Client, userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	index := userSessionsKey(userID)
	keys, err := client.SMembers(ctx, index).Result()
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}

	var count int64
	for _, key := range keys {
		exists, err := client.Exists(ctx, key).Result()
		if err != nil {
			return 0, fmt.Errorf("count sessions: %w", err)
		}
		if exists == 0 {
			if err := client.SRem(ctx, index, key).Err(); err != nil {
				return 0, fmt.Errorf("prune session index: %w", err)
			}
			continue
		}
		count++
	}
	return count, nil
}
