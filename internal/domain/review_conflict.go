package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewConflict records one detected name collision between a proposed
// concept and an existing graph node. The existing_* columns are a
// snapshot taken at detection time, not a live view.
type ReviewConflict struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_review_conflict_session" json:"session_id"`

	NewConceptName string `gorm:"column:new_concept_name;not null" json:"new_concept_name"`

	ExistingConceptID  uuid.UUID `gorm:"type:uuid;not null" json:"existing_concept_id"`
	ExistingName       string    `gorm:"column:existing_name;not null" json:"existing_name"`
	ExistingDefinition string    `gorm:"column:existing_definition;type:text" json:"existing_definition"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ReviewConflict) TableName() string { return "review_conflict" }
