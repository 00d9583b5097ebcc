package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Response struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssignmentID uuid.UUID       `gorm:"type:uuid;not null;index:idx_assignment_question,unique,priority:1" json:"assignment_id"`
	Assignment   *ExamAssignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	QuestionID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_assignment_question,unique,priority:2" json:"question_id"`
	Question     *Question       `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	RawValue     string          `gorm:"column:raw_value" json:"raw_value"`
	// Score is null only for ungraded open_text answers awaiting manual
	// grading. Rows become read-only once the assignment is scored.
	Score     *float64 `gorm:"column:score" json:"score,omitempty"`
	IsCorrect *bool    `gorm:"column:is_correct" json:"is_correct,omitempty"`
	// GradedPercentage is the manual grader's 0-100 for open_text answers.
	GradedPercentage *int           `gorm:"column:graded_percentage" json:"graded_percentage,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Response) TableName() string { return "response" }
