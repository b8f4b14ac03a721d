package repositories

import (
	"context"

	"github.com/anonto42/photogram/backend/internal/hashtag"
	"github.com/anonto42/photogram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines the interface for comment data operations.
// Create and UpdateContent return the number of hashtags they created.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (int, error)
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	UpdateContent(ctx context.Context, comment *models.Comment) (int, error)
	Delete(ctx context.Context, id uint) error
}

// PostgresCommentRepository implements CommentRepository on gorm
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// Create inserts a comment together with its derived HTML and tag links
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *models.Comment) (int, error) {
	var created int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = saveComment(tx, comment, true)
		return err
	})
	return created, err
}

// GetByID retrieves a comment with its author and tags
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		First(&comment, id).Error
	if err != nil {
		return nil, translate(err, "get comment")
	}
	return &comment, nil
}

// ListByPost retrieves the comments of a post in insertion order
func (r *PostgresCommentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "list comments")
	}
	return comments, nil
}

// UpdateContent stores new content and re-derives HTML and tags
func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, comment *models.Comment) (int, error) {
	var created int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = saveComment(tx, comment, false)
		return err
	})
	return created, err
}

// Delete removes a comment and its tag links. The hashtags stay.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM comment_tags WHERE comment_id = ?", id).Error; err != nil {
			return translate(err, "delete comment tags")
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return translate(res.Error, "delete comment")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "delete comment")
		}
		return nil
	})
}

// saveComment writes the comment row with HTML derived from its content,
// then replaces its tag set once the row has an id. It must run inside a
// transaction so a failure never leaves HTML and tags out of step.
func saveComment(tx *gorm.DB, c *models.Comment, isNew bool) (int, error) {
	html, names := hashtag.Derive(c.Content)
	c.HTML = html

	if isNew {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return 0, translate(err, "create comment")
		}
	} else {
		res := tx.Model(&models.Comment{}).
			Where("id = ?", c.ID).
			Updates(map[string]interface{}{"content": c.Content, "html": c.HTML})
		if res.Error != nil {
			return 0, translate(res.Error, "update comment")
		}
		if res.RowsAffected == 0 {
			return 0, translate(gorm.ErrRecordNotFound, "update comment")
		}
	}

	tags, created, err := getOrCreateTags(tx, names)
	if err != nil {
		return 0, err
	}
	assoc := tx.Model(c).Omit("Tags.*").Association("Tags")
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(tags)
	}
	if err != nil {
		return 0, translate(err, "replace comment tags")
	}
	c.Tags = tags
	return created, nil
}
