package feeds

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
	lastGoodKey     = "feeds:last_good"
	defaultCacheTTL = 24 * time.Hour
)

type cachedFeeds struct {
	Offerings []models.ProviderOffering `json:"offerings"`
	Roster    []models.ServiceProvider  `json:"roster"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// SnapshotCache keeps the most recent successful feed pull in Redis so a
// restarted service has a catalog before its first refresh completes.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache creates a Redis-backed last-good feed cache.
func NewSnapshotCache(cfg config.RedisConfig, logger *zap.Logger) *SnapshotCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &SnapshotCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("feed-cache"),
	}
}

// Store writes the last-good feed snapshot.
func (c *SnapshotCache) Store(ctx context.Context, offerings []models.ProviderOffering, roster []models.ServiceProvider) error {
	data, err := json.Marshal(cachedFeeds{
		Offerings: offerings,
		Roster:    roster,
		FetchedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, lastGoodKey, data, c.ttl).Err()
}

// Load reads the last-good feed snapshot. A missing or unreadable entry
// returns nils without error; the refresher just waits for the first fetch.
func (c *SnapshotCache) Load(ctx context.Context) ([]models.ProviderOffering, []models.ServiceProvider, error) {
	data, err := c.client.Get(ctx, lastGoodKey).Bytes()
	if err == redis.Nil {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var cached cachedFeeds
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("Discarding unreadable feed cache entry", zap.Error(err))
		return nil, nil, nil
	}

	return cached.Offerings, cached.Roster, nil
}

// Close releases the Redis connection.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
