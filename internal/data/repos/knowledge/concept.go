package knowledge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/conceptgraph-backend/internal/domain"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

type ConceptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Concept) ([]*types.Concept, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Concept, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Concept, error)
	GetByNormalizedNames(ctx context.Context, tx *gorm.DB, userID uuid.UUID, names []string) ([]*types.Concept, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Concept) ([]*types.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Concept{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Concept
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Concept, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *conceptRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Concept
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("normalized_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) GetByNormalizedNames(ctx context.Context, tx *gorm.DB, userID uuid.UUID, names []string) ([]*types.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Concept
	if userID == uuid.Nil || len(names) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND normalized_name IN ?", userID, names).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(ctx).
		Model(&types.Concept{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *conceptRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).Where("id IN ?", ids).Delete(&types.Concept{}).Error
}
