package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/nelc/HCx-sub001/internal/logger"
	"github.com/nelc/HCx-sub001/internal/types"
)

type CourseRepo interface {
	ListCatalog(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{
		db:  db,
		log: baseLog.With("repo", "CourseRepo"),
	}
}

// ListCatalog loads the full catalog mirror with curated skill links.
// The catalog is read-only to the engine and refreshed externally.
func (r *courseRepo) ListCatalog(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Course
	err := transaction.WithContext(ctx).
		Preload("Skills").
		Preload("Skills.Skill").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
