package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nelc/HCx-sub001/internal/logger"
	"github.com/nelc/HCx-sub001/internal/types"
)

type ResponseRepo interface {
	ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.Response, error)
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return &responseRepo{
		db:  db,
		log: baseLog.With("repo", "ResponseRepo"),
	}
}

func (r *responseRepo) ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.Response, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if assignmentID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Response
	err := transaction.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
