package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/metrics"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/repositories"
	"github.com/anonto42/photogram/backend/pkg/storage"
	"go.uber.org/zap"
)

// Upload is a file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreatePostInput carries the fields of a new post. Comment is optional.
type CreatePostInput struct {
	Photo   *Upload
	Comment string
}

// ListFilter narrows a post listing. An empty Tag lists every post.
type ListFilter struct {
	Tag    string
	Limit  int
	Offset int
}

// PostService reads and writes posts on behalf of a viewer or actor
type PostService struct {
	posts     repositories.PostRepository
	likes     repositories.LikeRepository
	store     storage.Storage
	tags      *TagService
	maxUpload int64
	log       *zap.Logger
}

// NewPostService creates a new PostService. maxUpload bounds photo size in bytes.
func NewPostService(
	posts repositories.PostRepository,
	likes repositories.LikeRepository,
	store storage.Storage,
	tags *TagService,
	maxUpload int64,
	log *zap.Logger,
) *PostService {
	return &PostService{posts: posts, likes: likes, store: store, tags: tags, maxUpload: maxUpload, log: log}
}

// ListPosts returns posts newest first. Each view carries viewer's like of
// the post, nil for anonymous viewers.
func (s *PostService) ListPosts(ctx context.Context, viewer *models.User, f ListFilter) ([]models.PostView, error) {
	opts := repositories.ListOptions{Limit: f.Limit, Offset: f.Offset}
	var (
		posts []models.Post
		err   error
	)
	if f.Tag != "" {
		posts, err = s.posts.FindPostsByTag(ctx, f.Tag, opts)
	} else {
		posts, err = s.posts.List(ctx, opts)
	}
	if err != nil {
		return nil, err
	}
	return s.views(ctx, viewer, posts)
}

// GetPost returns a single post as seen by viewer
func (s *PostService) GetPost(ctx context.Context, viewer *models.User, id uint) (*models.PostView, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, viewer, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CreatePost publishes a photo by actor, with an optional first comment.
// The file is stored before the rows are written and removed again if
// writing them fails.
func (s *PostService) CreatePost(ctx context.Context, actor *models.User, in CreatePostInput) (*models.PostView, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.checkPhoto(in.Photo); err != nil {
		return nil, err
	}
	comment, err := cleanComment("comment", in.Comment, false)
	if err != nil {
		return nil, err
	}

	ref, err := s.store.Save(ctx, in.Photo.Filename, in.Photo.ContentType, in.Photo.Body)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}
	post := &models.Post{AuthorID: actor.ID, Photo: ref}
	created, err := s.posts.Create(ctx, post, comment)
	if err != nil {
		s.discard(ref)
		return nil, err
	}
	if comment != "" {
		metrics.CommentsSaved.WithLabelValues("create").Inc()
	}
	s.tags.Created(ctx, created)
	return s.GetPost(ctx, actor, post.ID)
}

// UpdatePhoto replaces the photo of a post. Only its author may do so.
func (s *PostService) UpdatePhoto(ctx context.Context, actor *models.User, id uint, photo *Upload) (*models.PostView, error) {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPhoto(photo); err != nil {
		return nil, err
	}

	ref, err := s.store.Save(ctx, photo.Filename, photo.ContentType, photo.Body)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}
	if err := s.posts.UpdatePhoto(ctx, id, ref); err != nil {
		s.discard(ref)
		return nil, err
	}
	s.discard(post.Photo)
	return s.GetPost(ctx, actor, id)
}

// DeletePost removes a post with its comments and likes. Only its author
// may do so.
func (s *PostService) DeletePost(ctx context.Context, actor *models.User, id uint) error {
	post, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.discard(post.Photo)
	return nil
}

func (s *PostService) owned(ctx context.Context, actor *models.User, id uint) (*models.Post, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	return post, nil
}

func (s *PostService) checkPhoto(photo *Upload) error {
	switch {
	case photo == nil || photo.Body == nil:
		return apperrors.NewValidationError("photo", "No file was submitted.")
	case !strings.HasPrefix(photo.ContentType, "image/"):
		return apperrors.NewValidationError("photo", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	case s.maxUpload > 0 && photo.Size > s.maxUpload:
		return apperrors.NewValidationError("photo", fmt.Sprintf("The file is too large. Maximum size is %d MB.", s.maxUpload>>20))
	}
	return nil
}

// discard deletes a stored file that no row references anymore
func (s *PostService) discard(ref string) {
	if err := s.store.Delete(context.Background(), ref); err != nil {
		s.log.Warn("failed to delete stored photo", zap.String("ref", ref), zap.Error(err))
	}
}

func (s *PostService) views(ctx context.Context, viewer *models.User, posts []models.Post) ([]models.PostView, error) {
	views := make([]models.PostView, len(posts))
	for i := range posts {
		views[i].Post = posts[i]
	}
	if viewer == nil || len(posts) == 0 {
		return views, nil
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	liked, err := s.likes.LikedByUser(ctx, viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].IsLikedByRequester = liked[views[i].ID]
	}
	return views, nil
}
