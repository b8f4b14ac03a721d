// Package cache holds the hashtag search cache.
package cache

import (
	"context"

	"github.com/anonto42/photogram/backend/internal/models"
)

// TagCache caches hashtag prefix searches by keyword. Get returns the key
// the keyword maps to at lookup time; a miss is filled by passing that key
// to Set, so results read before an Invalidate never land in the new
// namespace. An empty key disables the fill.
type TagCache interface {
	Get(ctx context.Context, keyword string) (tags []models.HashTag, key string, ok bool)
	Set(ctx context.Context, key string, tags []models.HashTag)
	Invalidate(ctx context.Context)
}

// NoopTagCache never hits
type NoopTagCache struct{}

func (NoopTagCache) Get(context.Context, string) ([]models.HashTag, string, bool) {
	return nil, "", false
}
func (NoopTagCache) Set(context.Context, string, []models.HashTag) {}
func (NoopTagCache) Invalidate(context.Context)                    {}
