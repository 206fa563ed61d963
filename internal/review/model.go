package review

import "strings"

// Step is the workflow position of a review instance.
type Step int

const (
	StepInput Step = iota
	StepReview
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepInput:
		return "input"
	case StepReview:
		return "review"
	case StepComplete:
		return "complete"
	}
	return "unknown"
}

// Strategy is the reviewer's choice for collapsing a name collision.
type Strategy int

const (
	StrategyKeepExisting Strategy = iota
	StrategyOverwrite
	StrategyMerge
)

func (s Strategy) String() string {
	switch s {
	case StrategyKeepExisting:
		return "keep_existing"
	case StrategyOverwrite:
		return "overwrite"
	case StrategyMerge:
		return "merge"
	}
	return "unknown"
}

// ExistingConcept is the snapshot of a colliding graph node taken at
// conflict-detection time. It may go stale if the node changes while
// the session is open.
type ExistingConcept struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// Conflict describes one detected name collision.
type Conflict struct {
	NewConceptName string          `json:"new_concept_name"`
	Existing       ExistingConcept `json:"existing_concept"`
}

// Item is one proposed concept plus its review metadata.
type Item struct {
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

// Session is the mutable client-side snapshot of a server review session.
type Session struct {
	ID        string     `json:"session_id"`
	Concepts  []Item     `json:"concepts"`
	Conflicts []Conflict `json:"conflicts"`
}

// ConflictFor looks up the conflict record for a proposed concept name,
// case-insensitively.
func (s *Session) ConflictFor(name string) (Conflict, bool) {
	for _, c := range s.Conflicts {
		if strings.EqualFold(c.NewConceptName, name) {
			return c, true
		}
	}
	return Conflict{}, false
}

// CollapseOntoExisting reassigns an item's identity onto a pre-existing
// graph node. This is the one deliberate identity mutation in the model:
// the proposed item stops being "new" and addresses the existing node
// instead. The duplicate flag and match pointer are consumed together so
// the duplicate invariant (is_duplicate iff matched id set) holds.
func CollapseOntoExisting(item Item, existingID string) Item {
	item.ID = existingID
	item.IsDuplicate = false
	item.MatchedExistingID = ""
	return item
}
