package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SkillLevelLow    = "low"
	SkillLevelMedium = "medium"
	SkillLevelHigh   = "high"
)

// SkillResult is the persisted outcome of scoring one skill for one
// assignment. Invariant: Score + GapPercentage == 100.
type SkillResult struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssignmentID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_assignment_skill,unique,priority:1" json:"assignment_id"`
	Assignment    *ExamAssignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	SkillID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_assignment_skill,unique,priority:2" json:"skill_id"`
	Skill         *Skill          `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`
	Score         int             `gorm:"column:score;not null" json:"score"`
	Level         string          `gorm:"column:level;not null" json:"level"`
	GapPercentage int             `gorm:"column:gap_percentage;not null" json:"gap_percentage"`
	CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (SkillResult) TableName() string { return "skill_result" }
