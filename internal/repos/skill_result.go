package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nelc/HCx-sub001/internal/logger"
	"github.com/nelc/HCx-sub001/internal/types"
)

type SkillResultRepo interface {
	UpsertBatch(ctx context.Context, tx *gorm.DB, results []*types.SkillResult) error
	ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.SkillResult, error)
}

type skillResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillResultRepo(db *gorm.DB, baseLog *logger.Logger) SkillResultRepo {
	return &skillResultRepo{
		db:  db,
		log: baseLog.With("repo", "SkillResultRepo"),
	}
}

// UpsertBatch overwrites score/level/gap on conflict so re-scoring an
// assignment stays idempotent.
func (r *skillResultRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, results []*types.SkillResult) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(results) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range results {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.UpdatedAt = now
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "assignment_id"}, {Name: "skill_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score", "level", "gap_percentage", "updated_at",
			}),
		}).
		Create(results).Error
}

func (r *skillResultRepo) ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.SkillResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if assignmentID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.SkillResult
	err := transaction.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("skill_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
