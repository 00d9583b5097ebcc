package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Skill struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DomainID *uuid.UUID `gorm:"type:uuid;index" json:"domain_id,omitempty"`
	Name     string     `gorm:"column:name;not null;index" json:"name"`
	NameAr   string     `gorm:"column:name_ar" json:"name_ar"`
	// Weight is reserved for cross-skill domain aggregation; it is NOT
	// applied when folding responses into per-skill scores.
	Weight    float64        `gorm:"column:weight;not null;default:1" json:"weight"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Skill) TableName() string { return "skill" }
