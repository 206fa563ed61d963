package knowledge

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/conceptgraph-backend/internal/data/repos/testutil"
	types "github.com/yungbote/conceptgraph-backend/internal/domain"
)

func TestConceptRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewConceptRepo(db, testutil.Logger(t))

	userID := uuid.New()
	otherUserID := uuid.New()

	zebra := testutil.SeedConcept(t, ctx, tx, userID, "Zebra Pattern")
	alpha := testutil.SeedConcept(t, ctx, tx, userID, "Alpha Blending")
	testutil.SeedConcept(t, ctx, tx, otherUserID, "Alpha Blending")

	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{zebra.ID, alpha.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByIDs(ctx, tx, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetByIDs empty: err=%v len=%d", err, len(rows))
	}

	got, err := repo.GetByID(ctx, tx, zebra.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != "Zebra Pattern" {
		t.Fatalf("GetByID: got %+v", got)
	}
	if got, err := repo.GetByID(ctx, tx, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID missing: expected nil, got %+v err=%v", got, err)
	}

	byUser, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("GetByUserID: expected 2, got %d", len(byUser))
	}
	if byUser[0].NormalizedName != "alpha blending" || byUser[1].NormalizedName != "zebra pattern" {
		t.Fatalf("GetByUserID: expected normalized_name order, got %q then %q", byUser[0].NormalizedName, byUser[1].NormalizedName)
	}

	// Collision lookups are scoped per user.
	collisions, err := repo.GetByNormalizedNames(ctx, tx, userID, []string{"alpha blending", "no such concept"})
	if err != nil {
		t.Fatalf("GetByNormalizedNames: %v", err)
	}
	if len(collisions) != 1 || collisions[0].ID != alpha.ID {
		t.Fatalf("GetByNormalizedNames: expected alpha only, got %d rows", len(collisions))
	}

	if err := repo.UpdateFields(ctx, tx, alpha.ID, map[string]interface{}{
		"definition":       "updated definition",
		"complexity_score": 9,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	updated, err := repo.GetByID(ctx, tx, alpha.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if updated.Definition != "updated definition" || updated.ComplexityScore != 9 {
		t.Fatalf("UpdateFields not applied: %+v", updated)
	}

	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{zebra.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	afterDelete, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil {
		t.Fatalf("GetByUserID after delete: %v", err)
	}
	if len(afterDelete) != 1 || afterDelete[0].ID != alpha.ID {
		t.Fatalf("soft-deleted row still visible: %d rows", len(afterDelete))
	}
}

func TestConceptEdgeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewConceptEdgeRepo(db, testutil.Logger(t))

	userID := uuid.New()
	a := testutil.SeedConcept(t, ctx, tx, userID, "Concept A")
	b := testutil.SeedConcept(t, ctx, tx, userID, "Concept B")
	c := testutil.SeedConcept(t, ctx, tx, userID, "Concept C")

	created, err := repo.Create(ctx, tx, []*types.ConceptEdge{
		{ID: uuid.New(), UserID: userID, FromConceptID: a.ID, ToConceptID: b.ID, EdgeType: types.EdgeTypeRelated},
		{ID: uuid.New(), UserID: userID, FromConceptID: b.ID, ToConceptID: c.ID, EdgeType: types.EdgeTypeRelated},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Create: expected 2, got %d", len(created))
	}
	if rows, err := repo.Create(ctx, tx, nil); err != nil || len(rows) != 0 {
		t.Fatalf("Create empty: err=%v len=%d", err, len(rows))
	}

	byUser, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil || len(byUser) != 2 {
		t.Fatalf("GetByUserID: err=%v len=%d", err, len(byUser))
	}

	// Matches edges on either endpoint.
	touching, err := repo.GetByConceptIDs(ctx, tx, []uuid.UUID{c.ID})
	if err != nil {
		t.Fatalf("GetByConceptIDs: %v", err)
	}
	if len(touching) != 1 || touching[0].FromConceptID != b.ID {
		t.Fatalf("GetByConceptIDs: expected the b->c edge, got %d rows", len(touching))
	}

	if err := repo.SoftDeleteByConceptIDs(ctx, tx, []uuid.UUID{b.ID}); err != nil {
		t.Fatalf("SoftDeleteByConceptIDs: %v", err)
	}
	remaining, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil {
		t.Fatalf("GetByUserID after delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected all edges touching b removed, got %d", len(remaining))
	}
}
