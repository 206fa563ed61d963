package review

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

type ConflictRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ReviewConflict) ([]*types.ReviewConflict, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ReviewConflict, error)
	DeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error
}

type conflictRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConflictRepo(db *gorm.DB, baseLog *logger.Logger) ConflictRepo {
	return &conflictRepo{db: db, log: baseLog.With("repo", "ReviewConflictRepo")}
}

func (r *conflictRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ReviewConflict) ([]*types.ReviewConflict, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ReviewConflict{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conflictRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ReviewConflict, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ReviewConflict
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("new_concept_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conflictRepo) DeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if sessionID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&types.ReviewConflict{}).Error
}
