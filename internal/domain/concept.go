package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Concept is a committed knowledge-graph node.
type Concept struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_user_norm,unique,priority:1" json:"user_id"`

	Name string `gorm:"column:name;not null" json:"name"`
	// Lower-cased name; collision detection key, unique per user.
	NormalizedName string `gorm:"column:normalized_name;not null;index:idx_concept_user_norm,unique,priority:2" json:"normalized_name"`

	Definition      string  `gorm:"column:definition;type:text" json:"definition"`
	Domain          string  `gorm:"column:domain" json:"domain"`
	ComplexityScore int     `gorm:"column:complexity_score;not null;default:5" json:"complexity_score"`
	Confidence      float64 `gorm:"column:confidence;not null;default:0" json:"confidence"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Concept) TableName() string { return "concept" }
