package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/conceptgraph-backend/internal/domain"
)

func SeedConcept(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) *types.Concept {
	tb.Helper()
	c := &types.Concept{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            name,
		NormalizedName:  types.NormalizeConceptName(name),
		Definition:      "definition of " + name,
		Domain:          "testing",
		ComplexityScore: 5,
		Confidence:      0.9,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed concept: %v", err)
	}
	return c
}

func SeedConceptEdge(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, fromID, toID uuid.UUID) *types.ConceptEdge {
	tb.Helper()
	e := &types.ConceptEdge{
		ID:            uuid.New(),
		UserID:        userID,
		FromConceptID: fromID,
		ToConceptID:   toID,
		EdgeType:      types.EdgeTypeRelated,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed concept edge: %v", err)
	}
	return e
}

func SeedReviewSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string) *types.ReviewSession {
	tb.Helper()
	s := &types.ReviewSession{
		ID:          uuid.New(),
		UserID:      userID,
		SourceTitle: "notes",
		Status:      status,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed review session: %v", err)
	}
	return s
}

func SeedReviewConcept(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, name string, sortIndex int) *types.ReviewConcept {
	tb.Helper()
	rc := &types.ReviewConcept{
		ID:              uuid.New(),
		SessionID:       sessionID,
		Name:            name,
		Definition:      "definition of " + name,
		Domain:          "testing",
		ComplexityScore: 5,
		Confidence:      0.8,
		RelatedConcepts: datatypes.JSON([]byte("[]")),
		SortIndex:       sortIndex,
	}
	if err := tx.WithContext(ctx).Create(rc).Error; err != nil {
		tb.Fatalf("seed review concept: %v", err)
	}
	return rc
}

func SeedReviewConflict(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, newName string, existing *types.Concept) *types.ReviewConflict {
	tb.Helper()
	rc := &types.ReviewConflict{
		ID:                 uuid.New(),
		SessionID:          sessionID,
		NewConceptName:     newName,
		ExistingConceptID:  existing.ID,
		ExistingName:       existing.Name,
		ExistingDefinition: existing.Definition,
	}
	if err := tx.WithContext(ctx).Create(rc).Error; err != nil {
		tb.Fatalf("seed review conflict: %v", err)
	}
	return rc
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
