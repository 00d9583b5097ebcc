package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Course mirrors the external catalog. Read-only to the engine; refreshed
// by the surrounding application outside this core's control.
type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	NameAr      string    `gorm:"column:name_ar" json:"name_ar"`
	Description string    `gorm:"column:description" json:"description"`
	Subject     string    `gorm:"column:subject" json:"subject"`
	// DifficultyLevel is optional; empty means unknown.
	DifficultyLevel string        `gorm:"column:difficulty_level" json:"difficulty_level"`
	Skills          []CourseSkill `gorm:"foreignKey:CourseID;references:ID" json:"skills,omitempty"`
	// ExtractedSkills holds free-text skill strings produced by the
	// language-model enrichment pass ([]string in jsonb).
	ExtractedSkills datatypes.JSON `gorm:"column:extracted_skills;type:jsonb" json:"extracted_skills,omitempty"`
	Metadata        datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

// ExtractedSkillList decodes the jsonb column; malformed payloads decode
// to nil so enrichment failures never break matching.
func (c *Course) ExtractedSkillList() []string {
	if len(c.ExtractedSkills) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(c.ExtractedSkills, &out); err != nil {
		return nil
	}
	return out
}

// CourseSkill is a curated catalog link between a course and a skill,
// carrying the relevance weight assigned by catalog curators.
type CourseSkill struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_course_skill,unique,priority:1" json:"course_id"`
	SkillID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_course_skill,unique,priority:2" json:"skill_id"`
	Skill          *Skill         `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillID;references:ID" json:"skill,omitempty"`
	RelevanceScore float64        `gorm:"column:relevance_score;not null;default:1" json:"relevance_score"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseSkill) TableName() string { return "course_skill" }
