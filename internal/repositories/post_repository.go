package repositories

import (
	"context"

	"github.com/anonto42/photogram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, firstComment string) (int, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, opts ListOptions) ([]models.Post, error)
	FindPostsByTag(ctx context.Context, name string, opts ListOptions) ([]models.Post, error)
	UpdatePhoto(ctx context.Context, id uint, photo string) error
	Delete(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository on gorm
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// Create inserts a post and, when firstComment is not empty, a first
// comment by the post's author in the same transaction. It returns the
// number of hashtags created by that comment.
func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post, firstComment string) (int, error) {
	var created int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return translate(err, "create post")
		}
		if firstComment == "" {
			return nil
		}
		comment := models.Comment{
			PostID:   post.ID,
			AuthorID: post.AuthorID,
			Content:  firstComment,
		}
		var err error
		if created, err = saveComment(tx, &comment, true); err != nil {
			return err
		}
		post.Comments = []models.Comment{comment}
		return nil
	})
	return created, err
}

// GetByID retrieves a post with its author and comments
func (r *PostgresPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, translate(err, "get post")
	}
	return &post, nil
}

// Exists reports whether a post with id exists
func (r *PostgresPostRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err, "check post")
	}
	return count > 0, nil
}

// List retrieves posts newest first, ordered by id
func (r *PostgresPostRepository) List(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	posts := []models.Post{}
	q := withDetails(r.db.WithContext(ctx)).Order("posts.id DESC")
	if err := opts.apply(q).Find(&posts).Error; err != nil {
		return nil, translate(err, "list posts")
	}
	return posts, nil
}

// FindPostsByTag retrieves the posts having at least one comment tagged
// with name (exact, case-sensitive), each post once, newest first
func (r *PostgresPostRepository) FindPostsByTag(ctx context.Context, name string, opts ListOptions) ([]models.Post, error) {
	db := r.db.WithContext(ctx)
	tagged := db.Table("comments").
		Select("comments.post_id").
		Joins("JOIN comment_tags ON comment_tags.comment_id = comments.id").
		Joins("JOIN hash_tags ON hash_tags.id = comment_tags.hash_tag_id").
		Where("hash_tags.name = ?", name)

	posts := []models.Post{}
	q := withDetails(db).Where("posts.id IN (?)", tagged).Order("posts.id DESC")
	if err := opts.apply(q).Find(&posts).Error; err != nil {
		return nil, translate(err, "find posts by tag")
	}
	return posts, nil
}

// UpdatePhoto replaces the photo reference of a post
func (r *PostgresPostRepository) UpdatePhoto(ctx context.Context, id uint, photo string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{ID: id}).Update("photo", photo)
	if res.Error != nil {
		return translate(res.Error, "update post")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "update post")
	}
	return nil
}

// Delete removes a post with its likes, comments and comment tag links
func (r *PostgresPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM comment_tags WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)", id,
		).Error; err != nil {
			return translate(err, "delete comment tags")
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translate(err, "delete comments")
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return translate(err, "delete likes")
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return translate(res.Error, "delete post")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "delete post")
		}
		return nil
	})
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Preload("Comments.Author").
		Preload("Comments.Tags")
}
