package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReviewConcept is one proposed concept inside a review session. Its ID
// is provisional: an approved concept keeps it unless the reviewer
// collapsed the item onto an existing node.
type ReviewConcept struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_review_concept_session" json:"session_id"`

	Name            string  `gorm:"column:name;not null" json:"name"`
	Definition      string  `gorm:"column:definition;type:text" json:"definition"`
	Domain          string  `gorm:"column:domain" json:"domain"`
	ComplexityScore int     `gorm:"column:complexity_score;not null;default:5" json:"complexity_score"`
	Confidence      float64 `gorm:"column:confidence;not null;default:0" json:"confidence"`

	// Names of related concepts proposed by extraction; []string.
	RelatedConcepts datatypes.JSON `gorm:"column:related_concepts;type:jsonb" json:"related_concepts"`

	IsDuplicate       bool       `gorm:"column:is_duplicate;not null;default:false" json:"is_duplicate"`
	MatchedExistingID *uuid.UUID `gorm:"type:uuid;column:matched_existing_id" json:"matched_existing_id,omitempty"`

	SortIndex int `gorm:"column:sort_index;not null;default:0" json:"sort_index"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ReviewConcept) TableName() string { return "review_concept" }
