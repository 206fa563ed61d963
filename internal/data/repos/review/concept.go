package review

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

type ConceptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ReviewConcept) ([]*types.ReviewConcept, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ReviewConcept, error)
	DeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ReviewConceptRepo")}
}

func (r *conceptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ReviewConcept) ([]*types.ReviewConcept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ReviewConcept{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ReviewConcept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ReviewConcept
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sort_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) DeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if sessionID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&types.ReviewConcept{}).Error
}
