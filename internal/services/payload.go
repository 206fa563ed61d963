package services

import (
	"encoding/json"

	"github.com/google/uuid"

	types "github.com/yungbote/conceptgraph-backend/internal/domain"
)

// Wire shapes for the review-session API. The concept shape matches the
// client-side review item field for field so a fetched session can be
// loaded straight into the review controller.

type ConceptPayload struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Definition      string   `json:"definition"`
	Domain          string   `json:"domain"`
	ComplexityScore int      `json:"complexity_score"`
	Confidence      float64  `json:"confidence"`
	RelatedConcepts []string `json:"related_concepts"`

	IsSelected   bool `json:"is_selected"`
	UserModified bool `json:"user_modified"`
	IsDuplicate  bool `json:"is_duplicate"`

	MatchedExistingID string `json:"matched_existing_id,omitempty"`
}

type ExistingConceptPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

type ConflictPayload struct {
	NewConceptName string                 `json:"new_concept_name"`
	Existing       ExistingConceptPayload `json:"existing_concept"`
}

type SessionPayload struct {
	SessionID   string            `json:"session_id"`
	SourceTitle string            `json:"source_title,omitempty"`
	Status      string            `json:"status"`
	Concepts    []ConceptPayload  `json:"concepts"`
	Conflicts   []ConflictPayload `json:"conflicts"`
}

type SessionSummary struct {
	SessionID   string `json:"session_id"`
	SourceTitle string `json:"source_title,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func conceptPayloadFromRow(row *types.ReviewConcept) ConceptPayload {
	var related []string
	if len(row.RelatedConcepts) > 0 {
		_ = json.Unmarshal(row.RelatedConcepts, &related)
	}
	p := ConceptPayload{
		ID:              row.ID.String(),
		Name:            row.Name,
		Definition:      row.Definition,
		Domain:          row.Domain,
		ComplexityScore: row.ComplexityScore,
		Confidence:      row.Confidence,
		RelatedConcepts: related,
		// Non-duplicates start accepted; duplicates stay unselected until
		// the reviewer resolves the conflict.
		IsSelected:  !row.IsDuplicate,
		IsDuplicate: row.IsDuplicate,
	}
	if row.MatchedExistingID != nil && *row.MatchedExistingID != uuid.Nil {
		p.MatchedExistingID = row.MatchedExistingID.String()
	}
	return p
}
