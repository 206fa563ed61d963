package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ReviewSession) (*types.ReviewSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ReviewSession, error)
	GetPendingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ReviewSession, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, approvedCount int) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "ReviewSessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ReviewSession) (*types.ReviewSession, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ReviewSession, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.ReviewSession
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sessionRepo) GetPendingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ReviewSession, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ReviewSession
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.ReviewSessionStatusPending).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string, approvedCount int) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.ReviewSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"approved_count": approvedCount,
			"updated_at":     time.Now().UTC(),
		}).Error
}
