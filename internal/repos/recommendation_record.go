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

type RecommendationRecordRepo interface {
	UpsertProposed(ctx context.Context, tx *gorm.DB, records []*types.RecommendationRecord) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, status string) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RecommendationRecord, error)
}

type recommendationRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRecordRepo {
	return &recommendationRecordRepo{
		db:  db,
		log: baseLog.With("repo", "RecommendationRecordRepo"),
	}
}

// UpsertProposed refreshes the proposed snapshot for a user+course pair
// without touching status transitions the user already made.
func (r *recommendationRecordRepo) UpsertProposed(ctx context.Context, tx *gorm.DB, records []*types.RecommendationRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(records) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range records {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.Status == "" {
			row.Status = types.RecommendationStatusProposed
		}
		row.UpdatedAt = now
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"section", "score", "breakdown", "reason_ar", "reason_en", "updated_at",
			}),
		}).
		Create(records).Error
}

func (r *recommendationRecordRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.RecommendationRecord{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *recommendationRecordRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RecommendationRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.RecommendationRecord
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
