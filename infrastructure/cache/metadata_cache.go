package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// NewCache connects to Redis. A nil client is tolerated downstream; the
// resolver just skips caching.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not reachable")
		return nil, err
	}
	return client, nil
}

// MetadataCache caches resolved video metadata keyed by video ID.
type MetadataCache struct {
	client *redis.Client
}

func NewMetadataCache(client *redis.Client) repository.IMetadataCache {
	return &MetadataCache{client: client}
}

func (c *MetadataCache) Get(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	if c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, "video_metadata:"+videoID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var md model.VideoMetadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return nil, err
	}
	return &md, nil
}

func (c *MetadataCache) Set(ctx context.Context, videoID string, md *model.VideoMetadata, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "video_metadata:"+videoID, raw, ttl).Err()
}
