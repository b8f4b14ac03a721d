package repositories

import (
	"context"

	"github.com/anonto42/photogram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HashTagRepository defines the interface for hashtag data operations
type HashTagRepository interface {
	GetOrCreate(ctx context.Context, names []string) ([]models.HashTag, int, error)
	GetByName(ctx context.Context, name string) (*models.HashTag, error)
	SearchPrefix(ctx context.Context, keyword string, limit int) ([]models.HashTag, error)
}

// PostgresHashTagRepository implements HashTagRepository on gorm
type PostgresHashTagRepository struct {
	db *gorm.DB
}

// NewPostgresHashTagRepository creates a new PostgresHashTagRepository
func NewPostgresHashTagRepository(db *gorm.DB) *PostgresHashTagRepository {
	return &PostgresHashTagRepository{db: db}
}

// GetOrCreate returns the tags named by names, creating the missing ones.
// The second result is the number of tags created.
func (r *PostgresHashTagRepository) GetOrCreate(ctx context.Context, names []string) ([]models.HashTag, int, error) {
	var (
		tags    []models.HashTag
		created int
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tags, created, err = getOrCreateTags(tx, names)
		return err
	})
	return tags, created, err
}

// GetByName retrieves a hashtag by its exact, case-sensitive name
func (r *PostgresHashTagRepository) GetByName(ctx context.Context, name string) (*models.HashTag, error) {
	var tag models.HashTag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, translate(err, "get hashtag")
	}
	return &tag, nil
}

// SearchPrefix lists hashtags whose name starts with keyword, ignoring case
func (r *PostgresHashTagRepository) SearchPrefix(ctx context.Context, keyword string, limit int) ([]models.HashTag, error) {
	tags := []models.HashTag{}
	if keyword == "" {
		return tags, nil
	}
	q := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, escapeLike(keyword)+"%").
		Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&tags).Error; err != nil {
		return nil, translate(err, "search hashtags")
	}
	return tags, nil
}

// getOrCreateTags inserts unseen names and returns the tags in the order of
// names. Concurrent creators of the same name converge on one row through
// the unique index.
func getOrCreateTags(tx *gorm.DB, names []string) ([]models.HashTag, int, error) {
	if len(names) == 0 {
		return []models.HashTag{}, 0, nil
	}

	rows := make([]models.HashTag, len(names))
	for i, n := range names {
		rows[i] = models.HashTag{Name: n}
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return nil, 0, translate(res.Error, "create hashtags")
	}

	var found []models.HashTag
	if err := tx.Where("name IN ?", names).Find(&found).Error; err != nil {
		return nil, 0, translate(err, "load hashtags")
	}
	byName := make(map[string]models.HashTag, len(found))
	for _, t := range found {
		byName[t.Name] = t
	}
	tags := make([]models.HashTag, 0, len(names))
	for _, n := range names {
		if t, ok := byName[n]; ok {
			tags = append(tags, t)
		}
	}
	return tags, int(res.RowsAffected), nil
}
