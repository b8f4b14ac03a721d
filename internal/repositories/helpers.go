package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/photogram/backend/internal/apperrors"
	"gorm.io/gorm"
)

// ListOptions bounds a listing query. Zero Limit means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

func (o ListOptions) apply(db *gorm.DB) *gorm.DB {
	if o.Limit > 0 {
		db = db.Limit(o.Limit)
	}
	if o.Offset > 0 {
		db = db.Offset(o.Offset)
	}
	return db
}

// translate maps gorm sentinel errors onto the application taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, apperrors.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: referenced row missing: %w", what, apperrors.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
