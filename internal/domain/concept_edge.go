package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const EdgeTypeRelated = "related"

// ConceptEdge links two committed concepts belonging to the same user.
type ConceptEdge struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_edge_user" json:"user_id"`

	FromConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_edge_pair,unique,priority:1" json:"from_concept_id"`
	ToConceptID   uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_edge_pair,unique,priority:2" json:"to_concept_id"`
	EdgeType      string    `gorm:"column:edge_type;not null;default:'related';index:idx_concept_edge_pair,unique,priority:3" json:"edge_type"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptEdge) TableName() string { return "concept_edge" }
