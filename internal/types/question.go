package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeMCQ        = "mcq"
	QuestionTypeLikert     = "likert_scale"
	QuestionTypeSelfRating = "self_rating"
	QuestionTypeOpenText   = "open_text"
)

type Question struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExamID uuid.UUID `gorm:"type:uuid;not null;index" json:"exam_id"`
	Exam   *Exam     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExamID;references:ID" json:"exam,omitempty"`
	Type   string    `gorm:"column:type;not null" json:"type"`
	Text   string    `gorm:"column:text;not null" json:"text"`
	Weight float64   `gorm:"column:weight;not null;default:1" json:"weight"`
	// SkillID links the question to the skill it measures. Questions
	// without a skill link contribute nothing to skill scoring.
	SkillID *uuid.UUID `gorm:"type:uuid;index" json:"skill_id,omitempty"`
	Skill   *Skill     `gorm:"constraint:OnDelete:SET NULL;foreignKey:SkillID;references:ID" json:"skill,omitempty"`
	// Options holds the ordered []QuestionOption for mcq questions.
	Options datatypes.JSON `gorm:"column:options;type:jsonb" json:"options,omitempty"`
	// ScaleConfig holds ScaleConfig for likert_scale / self_rating.
	ScaleConfig datatypes.JSON `gorm:"column:scale_config;type:jsonb" json:"scale_config,omitempty"`
	Position    int            `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

type QuestionOption struct {
	Value     string  `json:"value"`
	Score     float64 `json:"score"`
	IsCorrect bool    `json:"is_correct"`
}

type ScaleConfig struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// MCQOptions decodes the jsonb options column. Malformed or missing
// payloads decode to an empty slice rather than an error; the scorer
// treats that as "no option matched".
func (q *Question) MCQOptions() []QuestionOption {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
