package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"gomarket/internal/auth/domain/model"
	"gomarket/internal/auth/domain/repository"
	apperrors "gomarket/internal/shared/errors"
	"gomarket/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix = "session:"
	userSetPrefix    = "session:user:"
	expiryZSet       = "session:expiry"
)

// RedisSessionStore keeps session records as JSON values keyed by session ID,
// with a per-user set for bulk revocation and a sorted set scored by
// expiresAt so expired records can be found with a capped range query.
type RedisSessionStore struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisSessionStore(client *redis.Client, log logger.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		logger: log.WithComponent("redis_session_store"),
	}
}

func sessionKey(sessionID string) string { return sessionKeyPrefix + sessionID }
func userSetKey(userID string) string    { return userSetPrefix + userID }

func (r *RedisSessionStore) Put(ctx context.Context, record *model.SessionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		r.logger.Error("Failed to serialize session record", zap.Error(err))
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(record.SessionID), data, 0)
	pipe.SAdd(ctx, userSetKey(record.UserID), record.SessionID)
	pipe.ZAdd(ctx, expiryZSet, redis.Z{
		Score:  float64(record.ExpiresAt),
		Member: record.SessionID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to store session in Redis",
			zap.String("sessionId", record.SessionID),
			zap.Error(err))
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load session from Redis",
			zap.String("sessionId", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var record model.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &record, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	record, err := r.Get(ctx, sessionID)
	if err == apperrors.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, userSetKey(record.UserID), sessionID)
	pipe.ZRem(ctx, expiryZSet, sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) FindByUserID(ctx context.Context, userID string) ([]*model.SessionRecord, error) {
	sessionIDs, err := r.client.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user sessions: %w", err)
	}

	records := make([]*model.SessionRecord, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		record, err := r.Get(ctx, id)
		if err == apperrors.ErrSessionNotFound {
			// Stale membership entry; the record is already gone.
			r.client.SRem(ctx, userSetKey(userID), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisSessionStore) FindExpiredBefore(ctx context.Context, tsMillis int64, limit int64) ([]*model.SessionRecord, error) {
	sessionIDs, err := r.client.ZRangeByScore(ctx, expiryZSet, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "(" + strconv.FormatInt(tsMillis, 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan expired sessions: %w", err)
	}

	records := make([]*model.SessionRecord, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		record, err := r.Get(ctx, id)
		if err == apperrors.ErrSessionNotFound {
			r.client.ZRem(ctx, expiryZSet, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisSessionStore) DeleteMany(ctx context.Context, records []*model.SessionRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var deleted int64
	for _, record := range records {
		removed, err := r.client.Del(ctx, sessionKey(record.SessionID)).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete session batch: %w", err)
		}
		pipe := r.client.TxPipeline()
		pipe.SRem(ctx, userSetKey(record.UserID), record.SessionID)
		pipe.ZRem(ctx, expiryZSet, record.SessionID)
		if _, err := pipe.Exec(ctx); err != nil {
			return deleted, fmt.Errorf("failed to clean session indexes: %w", err)
		}
		deleted += removed
	}
	return deleted, nil
}

func (r *RedisSessionStore) ListActive(ctx context.Context, nowMillis int64, limit int64) ([]*model.SessionRecord, error) {
	sessionIDs, err := r.client.ZRangeByScore(ctx, expiryZSet, &redis.ZRangeBy{
		Min:   "(" + strconv.FormatInt(nowMillis, 10),
		Max:   "+inf",
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	records := make([]*model.SessionRecord, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		record, err := r.Get(ctx, id)
		if err == apperrors.ErrSessionNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

var _ repository.SessionStore = (*RedisSessionStore)(nil)
