package domain

import (
	"sync"
	"testing"

	"gorm.io/gorm/schema"
)

// The collision-detection key is unique per user, never globally; two
// users must be able to hold a concept with the same normalized name.
func TestConceptUniqueIndexIsScopedToUser(t *testing.T) {
	s, err := schema.Parse(&Concept{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	var idx *schema.Index
	for _, candidate := range s.ParseIndexes() {
		if candidate.Name == "idx_concept_user_norm" {
			idx = candidate
		}
	}
	if idx == nil {
		t.Fatalf("idx_concept_user_norm not declared")
	}
	if idx.Class != "UNIQUE" {
		t.Fatalf("expected a unique index, got class %q", idx.Class)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("expected a composite (user_id, normalized_name) index, got %d field(s)", len(idx.Fields))
	}
	if idx.Fields[0].DBName != "user_id" || idx.Fields[1].DBName != "normalized_name" {
		t.Fatalf("unexpected index columns: %q, %q", idx.Fields[0].DBName, idx.Fields[1].DBName)
	}
}
