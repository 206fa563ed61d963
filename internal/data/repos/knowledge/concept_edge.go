package knowledge

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

type ConceptEdgeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ConceptEdge) ([]*types.ConceptEdge, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConceptEdge, error)
	GetByConceptIDs(ctx context.Context, tx *gorm.DB, conceptIDs []uuid.UUID) ([]*types.ConceptEdge, error)
	SoftDeleteByConceptIDs(ctx context.Context, tx *gorm.DB, conceptIDs []uuid.UUID) error
}

type conceptEdgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptEdgeRepo(db *gorm.DB, baseLog *logger.Logger) ConceptEdgeRepo {
	return &conceptEdgeRepo{db: db, log: baseLog.With("repo", "ConceptEdgeRepo")}
}

func (r *conceptEdgeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ConceptEdge) ([]*types.ConceptEdge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ConceptEdge{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptEdgeRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConceptEdge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ConceptEdge
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("user_id = ?", userID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptEdgeRepo) GetByConceptIDs(ctx context.Context, tx *gorm.DB, conceptIDs []uuid.UUID) ([]*types.ConceptEdge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ConceptEdge
	if len(conceptIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("from_concept_id IN ? OR to_concept_id IN ?", conceptIDs, conceptIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptEdgeRepo) SoftDeleteByConceptIDs(ctx context.Context, tx *gorm.DB, conceptIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(conceptIDs) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Where("from_concept_id IN ? OR to_concept_id IN ?", conceptIDs, conceptIDs).
		Delete(&types.ConceptEdge{}).Error
}
