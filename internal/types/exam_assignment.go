package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AssignmentStatusDraft      = "draft"
	AssignmentStatusInProgress = "in_progress"
	AssignmentStatusSubmitted  = "submitted"
	AssignmentStatusScored     = "scored"
)

type ExamAssignment struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExamID uuid.UUID `gorm:"type:uuid;not null;index" json:"exam_id"`
	Exam   *Exam     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExamID;references:ID" json:"exam,omitempty"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Status string    `gorm:"column:status;not null;default:'draft'" json:"status"`
	// OverallScore is the unweighted mean of per-skill percentages,
	// set when the assignment is scored.
	OverallScore *int           `gorm:"column:overall_score" json:"overall_score,omitempty"`
	SubmittedAt  *time.Time     `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ScoredAt     *time.Time     `gorm:"column:scored_at" json:"scored_at,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ExamAssignment) TableName() string { return "exam_assignment" }
