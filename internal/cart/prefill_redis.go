package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/config"
	"github.com/motohub/motohub-cart-service/internal/models"
)

const (
	prefillKeyPrefix  = "cart_prefill:"
	defaultPrefillTTL = 24 * time.Hour
)

// Ensure RedisPrefillStore implements PrefillSource
var _ PrefillSource = (*RedisPrefillStore)(nil)

// RedisPrefillStore keeps one-shot prefill records in Redis, keyed by session.
// A record is deleted the moment it is consumed.
type RedisPrefillStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisPrefillStore creates a Redis-backed prefill store.
func NewRedisPrefillStore(cfg config.RedisConfig, logger *zap.Logger) *RedisPrefillStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultPrefillTTL
	}

	return &RedisPrefillStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("prefill-store"),
	}
}

// Put stores a prefill record for a session, replacing any pending one.
func (s *RedisPrefillStore) Put(ctx context.Context, sessionID string, record *models.PrefillRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := prefillKeyPrefix + sessionID
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to store prefill record",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return err
	}

	s.logger.Info("Prefill record stored", zap.String("session_id", sessionID))
	return nil
}

// Consume fetches and deletes the session's prefill record. Returns nil when
// none is pending; an unreadable record is discarded rather than retried.
func (s *RedisPrefillStore) Consume(ctx context.Context, sessionID string) (*models.PrefillRecord, error) {
	key := prefillKeyPrefix + sessionID

	data, err := s.client.GetDel(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to read prefill record",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, err
	}

	var record models.PrefillRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("Discarding unreadable prefill record",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, nil
	}

	s.logger.Info("Prefill record consumed", zap.String("session_id", sessionID))
	return &record, nil
}

// Close releases the Redis connection.
func (s *RedisPrefillStore) Close() error {
	return s.client.Close()
}
