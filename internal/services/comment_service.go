package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/metrics"
	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/anonto42/photogram/backend/internal/repositories"
)

// MaxCommentLength is the longest accepted comment, in characters
const MaxCommentLength = 2000

// CommentService creates, edits and deletes comments on behalf of an actor
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	tags     *TagService
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, tags *TagService) *CommentService {
	return &CommentService{comments: comments, posts: posts, tags: tags}
}

// Create adds a comment by actor to a post
func (s *CommentService) Create(ctx context.Context, actor *models.User, postID uint, content string) (*models.Comment, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	content, err := cleanComment("content", content, true)
	if err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, AuthorID: actor.ID, Content: content}
	created, err := s.comments.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	metrics.CommentsSaved.WithLabelValues("create").Inc()
	s.tags.Created(ctx, created)
	comment.Author = *actor
	return comment, nil
}

// Update replaces the content of a comment. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, actor *models.User, commentID uint, content string) (*models.Comment, error) {
	comment, err := s.owned(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Content, err = cleanComment("content", content, true); err != nil {
		return nil, err
	}

	created, err := s.comments.UpdateContent(ctx, comment)
	if err != nil {
		return nil, err
	}
	metrics.CommentsSaved.WithLabelValues("update").Inc()
	s.tags.Created(ctx, created)
	return comment, nil
}

// Delete removes a comment. Only its author may do so.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, commentID uint) error {
	if _, err := s.owned(ctx, actor, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

// ListByPost returns the comments of a post in insertion order
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

func (s *CommentService) owned(ctx context.Context, actor *models.User, commentID uint) (*models.Comment, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	return comment, nil
}

func (s *CommentService) requirePost(ctx context.Context, postID uint) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	return nil
}

// cleanComment trims content and checks its length. field names the input
// in the returned ValidationError.
func cleanComment(field, content string, required bool) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		if required {
			return "", apperrors.NewValidationError(field, "This field may not be blank.")
		}
		return "", nil
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", apperrors.NewValidationError(field, "Ensure this field has no more than 2000 characters.")
	}
	return content, nil
}
