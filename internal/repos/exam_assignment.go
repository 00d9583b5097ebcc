package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nelc/HCx-sub001/internal/logger"
	"github.com/nelc/HCx-sub001/internal/types"
)

type ExamAssignmentRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExamAssignment, error)
	ListScoredByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ExamAssignment, error)
	MarkScored(ctx context.Context, tx *gorm.DB, id uuid.UUID, overallScore int) error
}

type examAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) ExamAssignmentRepo {
	return &examAssignmentRepo{
		db:  db,
		log: baseLog.With("repo", "ExamAssignmentRepo"),
	}
}

func (r *examAssignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExamAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ExamAssignment
	err := transaction.WithContext(ctx).
		Preload("Exam").
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *examAssignmentRepo) ListScoredByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ExamAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.ExamAssignment
	err := transaction.WithContext(ctx).
		Preload("Exam").
		Where("user_id = ? AND status = ?", userID, types.AssignmentStatusScored).
		Order("scored_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *examAssignmentRepo) MarkScored(ctx context.Context, tx *gorm.DB, id uuid.UUID, overallScore int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.ExamAssignment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        types.AssignmentStatusScored,
			"overall_score": overallScore,
			"scored_at":     now,
			"updated_at":    now,
		}).Error
}
