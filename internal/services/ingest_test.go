package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/conceptgraph-backend/internal/clients/extraction"
	types "github.com/yungbote/conceptgraph-backend/internal/domain"
)

func candidateBatch() []extraction.Candidate {
	return []extraction.Candidate{
		{Name: "Gradient Descent", Definition: "iterative optimizer", Domain: "ml", ComplexityScore: 5, Confidence: 0.9},
		{Name: "Neural Network", Definition: "layered function approximator", Domain: "ml", ComplexityScore: 6, Confidence: 0.85, RelatedConcepts: []string{"Gradient Descent"}},
		{Name: "neural network", Definition: "duplicate extraction of the same term", Domain: "ml", ComplexityScore: 6, Confidence: 0.5},
	}
}

func existingNeuralNetwork() map[string]*types.Concept {
	return map[string]*types.Concept{
		"neural network": {
			ID:             uuid.New(),
			Name:           "Neural Network",
			NormalizedName: "neural network",
			Definition:     "existing definition",
		},
	}
}

func TestBuildReviewRows(t *testing.T) {
	sessionID := uuid.New()
	existing := existingNeuralNetwork()

	conceptRows, conflictRows := buildReviewRows(sessionID, candidateBatch(), existing)

	if len(conceptRows) != 3 {
		t.Fatalf("expected a row per candidate, got %d", len(conceptRows))
	}
	for i, row := range conceptRows {
		if row.SessionID != sessionID {
			t.Fatalf("row %d bound to wrong session", i)
		}
		if row.SortIndex != i {
			t.Fatalf("row %d should keep extraction order, got sort_index %d", i, row.SortIndex)
		}
	}

	if conceptRows[0].IsDuplicate {
		t.Fatalf("no collision expected for %q", conceptRows[0].Name)
	}
	for _, i := range []int{1, 2} {
		row := conceptRows[i]
		if !row.IsDuplicate {
			t.Fatalf("expected collision flagged for %q", row.Name)
		}
		if row.MatchedExistingID == nil || *row.MatchedExistingID != existing["neural network"].ID {
			t.Fatalf("duplicate row %d must carry the matched id", i)
		}
	}

	// Two candidates collide with the same node; one conflict snapshot.
	if len(conflictRows) != 1 {
		t.Fatalf("expected one conflict per normalized name, got %d", len(conflictRows))
	}
	conflict := conflictRows[0]
	if conflict.ExistingConceptID != existing["neural network"].ID {
		t.Fatalf("conflict must reference the existing node")
	}
	if conflict.ExistingDefinition != "existing definition" {
		t.Fatalf("conflict must snapshot the existing definition, got %q", conflict.ExistingDefinition)
	}
}

func TestBuildReviewRowsNoCollisions(t *testing.T) {
	conceptRows, conflictRows := buildReviewRows(uuid.New(), candidateBatch(), nil)
	if len(conflictRows) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(conflictRows))
	}
	for _, row := range conceptRows {
		if row.IsDuplicate || row.MatchedExistingID != nil {
			t.Fatalf("unexpected duplicate flag on %q", row.Name)
		}
	}
}

func TestDirectApproved(t *testing.T) {
	existing := existingNeuralNetwork()
	approved := directApproved(candidateBatch(), existing)

	if len(approved) != 3 {
		t.Fatalf("expected all candidates approved, got %d", len(approved))
	}
	if approved[0].ID == existing["neural network"].ID.String() {
		t.Fatalf("non-colliding candidate must get a fresh id")
	}
	if _, err := uuid.Parse(approved[0].ID); err != nil {
		t.Fatalf("approved ids must be uuids: %v", err)
	}
	for _, i := range []int{1, 2} {
		if approved[i].ID != existing["neural network"].ID.String() {
			t.Fatalf("colliding candidate %d must collapse onto the existing id", i)
		}
	}
	if approved[1].Definition != "layered function approximator" {
		t.Fatalf("skip-review keeps the proposal's content")
	}
}

func TestConceptPayloadFromRow(t *testing.T) {
	matched := uuid.New()
	row := &types.ReviewConcept{
		ID:                uuid.New(),
		SessionID:         uuid.New(),
		Name:              "Neural Network",
		Definition:        "def",
		ComplexityScore:   6,
		Confidence:        0.8,
		RelatedConcepts:   datatypes.JSON(`["Gradient Descent"]`),
		IsDuplicate:       true,
		MatchedExistingID: &matched,
	}

	p := conceptPayloadFromRow(row)
	if p.IsSelected {
		t.Fatalf("duplicates start unselected")
	}
	if p.MatchedExistingID != matched.String() {
		t.Fatalf("matched id not carried over")
	}
	if len(p.RelatedConcepts) != 1 || p.RelatedConcepts[0] != "Gradient Descent" {
		t.Fatalf("related concepts not decoded: %+v", p.RelatedConcepts)
	}

	row.IsDuplicate = false
	row.MatchedExistingID = nil
	p = conceptPayloadFromRow(row)
	if !p.IsSelected {
		t.Fatalf("non-duplicates start accepted")
	}
	if p.MatchedExistingID != "" {
		t.Fatalf("no matched id expected")
	}
}
