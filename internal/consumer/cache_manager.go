package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"radmon/internal/config"
	"radmon/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheManager keeps each device's most recent reading in Redis so the
// dashboard and health checks never have to hit PostgreSQL for it.
type CacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCacheManager creates the cache manager.
func NewCacheManager(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *CacheManager {
	return &CacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (c *CacheManager) latestKey(deviceID string) string {
	return fmt.Sprintf("%s%s%s",
		c.config.Cache.LatestKeyPrefix,
		deviceID,
		c.config.Cache.LatestSuffix,
	)
}

// SetLatestReading overwrites the device's cached reading with a TTL.
func (c *CacheManager) SetLatestReading(ctx context.Context, reading *domain.Reading) error {
	jsonData, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	key := c.latestKey(reading.DeviceID)
	err = c.redisClient.Set(
		ctx,
		key,
		jsonData,
		time.Duration(c.config.Cache.LatestTTL)*time.Second,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set latest reading cache: %w", err)
	}

	c.logger.Debug("updated latest reading cache",
		zap.String("device_id", reading.DeviceID),
		zap.String("key", key),
	)

	return nil
}

// GetLatestReading returns the device's cached reading, or nil when the
// cache is cold or expired.
func (c *CacheManager) GetLatestReading(ctx context.Context, deviceID string) (*domain.Reading, error) {
	val, err := c.redisClient.Get(ctx, c.latestKey(deviceID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var reading domain.Reading
	if err := json.Unmarshal([]byte(val), &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached reading: %w", err)
	}

	return &reading, nil
}

// ListCachedDeviceIDs scans Redis for every device with a cached
// reading. Scan-based, so it is meant for periodic jobs rather than
// request paths.
func (c *CacheManager) ListCachedDeviceIDs(ctx context.Context) ([]string, error) {
	pattern := fmt.Sprintf("%s*%s",
		c.config.Cache.LatestKeyPrefix,
		c.config.Cache.LatestSuffix,
	)

	var deviceIDs []string
	iter := c.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		deviceID := key[len(c.config.Cache.LatestKeyPrefix):]
		deviceID = deviceID[:len(deviceID)-len(c.config.Cache.LatestSuffix)]
		deviceIDs = append(deviceIDs, deviceID)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}

	return deviceIDs, nil
}
