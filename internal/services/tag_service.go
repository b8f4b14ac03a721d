package services

import (
	"context"
	"strings"

	"github.com/anonto42/photogram/backend/internal/metrics"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/repositories"
	"github.com/anonto42/photogram/backend/pkg/cache"
)

// TagService answers hashtag searches and keeps their cache fresh
type TagService struct {
	tags  repositories.HashTagRepository
	cache cache.TagCache
	limit int
}

// NewTagService creates a TagService. A nil cache disables caching; limit
// caps search results, zero means unlimited.
func NewTagService(tags repositories.HashTagRepository, c cache.TagCache, limit int) *TagService {
	if c == nil {
		c = cache.NoopTagCache{}
	}
	return &TagService{tags: tags, cache: c, limit: limit}
}

// Search returns the hashtags whose name starts with keyword, ignoring
// case. An empty keyword yields an empty list.
func (s *TagService) Search(ctx context.Context, keyword string) ([]models.HashTag, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.HashTag{}, nil
	}
	tags, key, ok := s.cache.Get(ctx, keyword)
	if ok {
		return tags, nil
	}
	tags, err := s.tags.SearchPrefix(ctx, keyword, s.limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, tags)
	return tags, nil
}

// Created records that a comment save created n new hashtags
func (s *TagService) Created(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	metrics.HashTagsCreated.Add(float64(n))
	s.cache.Invalidate(ctx)
}
