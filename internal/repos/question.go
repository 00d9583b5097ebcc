package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nelc/HCx-sub001/internal/logger"
	"github.com/nelc/HCx-sub001/internal/types"
)

type QuestionRepo interface {
	ListByExam(ctx context.Context, tx *gorm.DB, examID uuid.UUID) ([]*types.Question, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{
		db:  db,
		log: baseLog.With("repo", "QuestionRepo"),
	}
}

func (r *questionRepo) ListByExam(ctx context.Context, tx *gorm.DB, examID uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if examID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Question
	err := transaction.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
