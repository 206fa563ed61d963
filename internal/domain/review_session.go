package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReviewSessionStatusPending   = "pending"
	ReviewSessionStatusApproved  = "approved"
	ReviewSessionStatusCancelled = "cancelled"
)

// ReviewSession is a server-tracked batch of proposed concepts awaiting
// human accept/reject/edit decisions.
type ReviewSession struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_review_session_user" json:"user_id"`

	SourceTitle string `gorm:"column:source_title" json:"source_title,omitempty"`
	Status      string `gorm:"column:status;not null;default:'pending';index:idx_review_session_status" json:"status"`

	// Filled in when the session is approved.
	ApprovedCount int `gorm:"column:approved_count;not null;default:0" json:"approved_count"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ReviewSession) TableName() string { return "review_session" }
