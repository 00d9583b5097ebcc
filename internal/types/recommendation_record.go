package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RecommendationStatusProposed  = "proposed"
	RecommendationStatusAccepted  = "accepted"
	RecommendationStatusDismissed = "dismissed"
)

// RecommendationRecord persists only the acceptance/status transitions on
// individual recommendations. The ranked lists themselves are recomputed
// per request and never stored verbatim.
type RecommendationRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_user_course_rec,unique,priority:1" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_course_rec,unique,priority:2" json:"course_id"`
	Course   *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Section  string    `gorm:"column:section;not null" json:"section"`
	Status   string    `gorm:"column:status;not null;default:'proposed'" json:"status"`
	Score    float64   `gorm:"column:score;not null;default:0" json:"score"`
	// Breakdown stores the score_breakdown snapshot for auditability.
	Breakdown datatypes.JSON `gorm:"column:breakdown;type:jsonb" json:"breakdown,omitempty"`
	ReasonAr  string         `gorm:"column:reason_ar" json:"reason_ar"`
	ReasonEn  string         `gorm:"column:reason_en" json:"reason_en"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RecommendationRecord) TableName() string { return "recommendation_record" }
