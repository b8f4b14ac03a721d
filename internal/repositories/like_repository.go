package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"github.com/anonto42/photogram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxToggleAttempts = 3

var errLostRace = errors.New("like inserted concurrently")

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID uint) (models.LikeResult, *models.PostLike, error)
	Like(ctx context.Context, postID, userID uint) (*models.PostLike, bool, error)
	Unlike(ctx context.Context, postID, userID uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.PostLike, error)
	DeleteByID(ctx context.Context, id uint) error
	LikedByUser(ctx context.Context, userID uint, postIDs []uint) (map[uint]*models.PostLike, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

// PostgresLikeRepository implements LikeRepository on gorm
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

var likePair = clause.OnConflict{
	Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
	DoNothing: true,
}

// Toggle deletes the (post, user) like if it exists, otherwise creates it.
// Delete-or-insert runs in one transaction against the unique pair index;
// an insert that loses a race to a concurrent toggle is retried so the
// second toggle observes the first.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, postID, userID uint) (models.LikeResult, *models.PostLike, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		var (
			result models.LikeResult
			like   *models.PostLike
		)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
			if res.Error != nil {
				return translate(res.Error, "delete like")
			}
			if res.RowsAffected > 0 {
				result = models.Unliked
				return nil
			}

			l := &models.PostLike{PostID: postID, UserID: userID}
			res = tx.Clauses(likePair).Create(l)
			if res.Error != nil {
				return translate(res.Error, "create like")
			}
			if res.RowsAffected == 0 {
				return errLostRace
			}
			result, like = models.Liked, l
			return nil
		})
		if errors.Is(err, errLostRace) {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return result, like, nil
	}
	return "", nil, fmt.Errorf("toggle like on post %d: %w", postID, apperrors.ErrConflict)
}

// Like makes sure the (post, user) like exists. The bool reports whether
// this call created it.
func (r *PostgresLikeRepository) Like(ctx context.Context, postID, userID uint) (*models.PostLike, bool, error) {
	db := r.db.WithContext(ctx)
	like := &models.PostLike{PostID: postID, UserID: userID}
	res := db.Clauses(likePair).Create(like)
	if res.Error != nil {
		return nil, false, translate(res.Error, "create like")
	}
	if res.RowsAffected > 0 {
		return like, true, nil
	}

	existing := &models.PostLike{}
	if err := db.Where("post_id = ? AND user_id = ?", postID, userID).First(existing).Error; err != nil {
		return nil, false, translate(err, "get like")
	}
	return existing, false, nil
}

// Unlike makes sure the (post, user) like does not exist. The bool reports
// whether a row was deleted.
func (r *PostgresLikeRepository) Unlike(ctx context.Context, postID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
	if res.Error != nil {
		return false, translate(res.Error, "delete like")
	}
	return res.RowsAffected > 0, nil
}

// GetByID retrieves a like by its id
func (r *PostgresLikeRepository) GetByID(ctx context.Context, id uint) (*models.PostLike, error) {
	var like models.PostLike
	if err := r.db.WithContext(ctx).First(&like, id).Error; err != nil {
		return nil, translate(err, "get like")
	}
	return &like, nil
}

// DeleteByID removes a like by its id
func (r *PostgresLikeRepository) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.PostLike{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete like")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete like")
	}
	return nil
}

// LikedByUser returns the user's likes among postIDs, keyed by post id
func (r *PostgresLikeRepository) LikedByUser(ctx context.Context, userID uint, postIDs []uint) (map[uint]*models.PostLike, error) {
	out := make(map[uint]*models.PostLike)
	if len(postIDs) == 0 {
		return out, nil
	}
	var likes []models.PostLike
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&likes).Error
	if err != nil {
		return nil, translate(err, "list likes")
	}
	for i := range likes {
		out[likes[i].PostID] = &likes[i]
	}
	return out, nil
}

// CountByPost returns the number of likes of a post
func (r *PostgresLikeRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, translate(err, "count likes")
	}
	return count, nil
}
