package repository

import (
	"context"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
)

// IVideoMetadata resolves a video reference to its metadata. Repeated
// resolution of the same reference is idempotent modulo upstream changes.
type IVideoMetadata interface {
	Resolve(ctx context.Context, reference string) (*model.VideoMetadata, error)
}

// IMetadataCache caches resolved metadata keyed by video ID.
type IMetadataCache interface {
	Get(ctx context.Context, videoID string) (*model.VideoMetadata, error)
	Set(ctx context.Context, videoID string, md *model.VideoMetadata, ttl time.Duration) error
}
