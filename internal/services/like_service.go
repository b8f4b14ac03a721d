package services

import (
	"context"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/metrics"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/repositories"
)

// LikeService manages likes on behalf of an actor
type LikeService struct {
	likes repositories.LikeRepository
	posts repositories.PostRepository
}

// NewLikeService creates a new LikeService
func NewLikeService(likes repositories.LikeRepository, posts repositories.PostRepository) *LikeService {
	return &LikeService{likes: likes, posts: posts}
}

// Toggle flips whether actor likes the post. The like is returned when
// the result is models.Liked.
func (s *LikeService) Toggle(ctx context.Context, actor *models.User, postID uint) (models.LikeResult, *models.PostLike, error) {
	if err := s.check(ctx, actor, postID); err != nil {
		return "", nil, err
	}
	result, like, err := s.likes.Toggle(ctx, postID, actor.ID)
	if err != nil {
		return "", nil, err
	}
	metrics.LikeToggles.WithLabelValues(string(result)).Inc()
	return result, like, nil
}

// Like makes actor like the post. created is false when the like existed.
func (s *LikeService) Like(ctx context.Context, actor *models.User, postID uint) (like *models.PostLike, created bool, err error) {
	if err := s.check(ctx, actor, postID); err != nil {
		return nil, false, err
	}
	return s.likes.Like(ctx, postID, actor.ID)
}

// Unlike removes actor's like of the post, ErrNotFound when there is none
func (s *LikeService) Unlike(ctx context.Context, actor *models.User, postID uint) error {
	if err := s.check(ctx, actor, postID); err != nil {
		return err
	}
	deleted, err := s.likes.Unlike(ctx, postID, actor.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteLike removes a like by id. Only the user who liked may do so.
func (s *LikeService) DeleteLike(ctx context.Context, actor *models.User, likeID uint) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	like, err := s.likes.GetByID(ctx, likeID)
	if err != nil {
		return err
	}
	if like.UserID != actor.ID {
		return apperrors.ErrForbidden
	}
	return s.likes.DeleteByID(ctx, likeID)
}

func (s *LikeService) check(ctx context.Context, actor *models.User, postID uint) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	return nil
}
