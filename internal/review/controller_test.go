package review

import (
	"errors"
	"reflect"
	"testing"

	errsx "github.com/yungbote/conceptgraph-backend/internal/pkg/errors"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func testSession() Session {
	return Session{
		ID: "sess-1",
		Concepts: []Item{
			{ID: "a", Name: "Gradient Descent", IsSelected: true},
			{ID: "b", Name: "Neural Network", IsSelected: false, IsDuplicate: true, MatchedExistingID: "existing-1"},
			{ID: "c", Name: "Backpropagation", IsSelected: true},
		},
		Conflicts: []Conflict{
			{
				NewConceptName: "Neural Network",
				Existing:       ExistingConcept{ID: "existing-1", Name: "Neural Network", Definition: "old"},
			},
		},
	}
}

func reviewController(t *testing.T) *Controller {
	t.Helper()
	c := NewController(testLogger(t))
	c.AttachSession(testSession())
	return c
}

func TestControllerStepTransitions(t *testing.T) {
	c := NewController(testLogger(t))
	if c.Step() != StepInput {
		t.Fatalf("fresh controller should start at input, got %s", c.Step())
	}
	if c.Session() != nil {
		t.Fatalf("no session expected before attach")
	}

	c.AttachSession(testSession())
	if c.Step() != StepReview {
		t.Fatalf("attach should move to review, got %s", c.Step())
	}
	if c.Session() == nil || c.Session().ID != "sess-1" {
		t.Fatalf("session not adopted")
	}

	c.Complete()
	if c.Step() != StepComplete || c.Session() != nil {
		t.Fatalf("complete should discard session, step=%s", c.Step())
	}

	c.Reset()
	if c.Step() != StepInput || c.Session() != nil {
		t.Fatalf("reset should return to input, step=%s", c.Step())
	}
}

func TestControllerToggleSelection(t *testing.T) {
	c := reviewController(t)

	if err := c.ToggleSelection("a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	item := c.Session().Concepts[0]
	if item.IsSelected {
		t.Fatalf("expected item deselected")
	}
	if !item.UserModified {
		t.Fatalf("toggle must mark the item touched")
	}

	if err := c.ToggleSelection("a"); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	item = c.Session().Concepts[0]
	if !item.IsSelected {
		t.Fatalf("expected selection restored")
	}
	if !item.UserModified {
		t.Fatalf("user_modified is one-way")
	}

	if err := c.ToggleSelection("nope"); !errors.Is(err, errsx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestControllerEditFlow(t *testing.T) {
	c := reviewController(t)

	if _, open := c.EditingID(); open {
		t.Fatalf("no edit should be open initially")
	}
	if err := c.BeginEdit("missing"); !errors.Is(err, errsx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := c.BeginEdit("b"); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if id, open := c.EditingID(); !open || id != "b" {
		t.Fatalf("expected edit open on b, got %q open=%v", id, open)
	}

	name := "Artificial Neural Network"
	score := 8
	if err := c.SaveEdit("b", EditFields{Name: &name, ComplexityScore: &score}); err != nil {
		t.Fatalf("save edit: %v", err)
	}
	if _, open := c.EditingID(); open {
		t.Fatalf("save should close the edit")
	}
	item := c.Session().Concepts[1]
	if item.Name != name || item.ComplexityScore != score {
		t.Fatalf("fields not applied: %+v", item)
	}
	if item.Domain != "" {
		t.Fatalf("nil fields must be left unchanged: %+v", item)
	}
	if !item.IsSelected || !item.UserModified {
		t.Fatalf("saving an edit accepts the item: %+v", item)
	}

	if err := c.BeginEdit("a"); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	c.CancelEdit()
	if _, open := c.EditingID(); open {
		t.Fatalf("cancel should close the edit")
	}
	if !c.Session().Concepts[0].IsSelected {
		t.Fatalf("cancel must not touch the item")
	}
}

func TestControllerApplyResolution(t *testing.T) {
	t.Run("keep existing", func(t *testing.T) {
		c := reviewController(t)
		if err := c.ApplyResolution("b", StrategyKeepExisting); err != nil {
			t.Fatalf("apply: %v", err)
		}
		item := c.Session().Concepts[1]
		if item.IsSelected || !item.UserModified {
			t.Fatalf("keep existing should deselect and mark touched: %+v", item)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		c := reviewController(t)
		if err := c.ApplyResolution("b", StrategyOverwrite); err != nil {
			t.Fatalf("apply: %v", err)
		}
		item := c.Session().Concepts[1]
		if item.ID != "existing-1" || !item.IsSelected {
			t.Fatalf("overwrite should collapse and select: %+v", item)
		}
	})

	t.Run("merge opens edit on collapsed id", func(t *testing.T) {
		c := reviewController(t)
		if err := c.ApplyResolution("b", StrategyMerge); err != nil {
			t.Fatalf("apply: %v", err)
		}
		item := c.Session().Concepts[1]
		if item.ID != "existing-1" {
			t.Fatalf("merge should collapse identity: %+v", item)
		}
		if id, open := c.EditingID(); !open || id != "existing-1" {
			t.Fatalf("merge should land in edit mode on the collapsed item, got %q open=%v", id, open)
		}
	})

	t.Run("no conflict record is a logged no-op", func(t *testing.T) {
		c := reviewController(t)
		before := c.Session().Concepts[0]
		if err := c.ApplyResolution("a", StrategyOverwrite); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !reflect.DeepEqual(c.Session().Concepts[0], before) {
			t.Fatalf("item without conflict must be unchanged")
		}
	})

	t.Run("missing match pointer is a logged no-op", func(t *testing.T) {
		c := reviewController(t)
		c.Session().Concepts[1].MatchedExistingID = ""
		if err := c.ApplyResolution("b", StrategyOverwrite); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if c.Session().Concepts[1].ID != "b" {
			t.Fatalf("item must be unchanged without a match pointer")
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		c := reviewController(t)
		if err := c.ApplyResolution("missing", StrategyMerge); !errors.Is(err, errsx.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestControllerDisplayItems(t *testing.T) {
	c := reviewController(t)
	items := c.DisplayItems()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if !items[0].IsDuplicate {
		t.Fatalf("duplicates should sort first, got %+v", items[0])
	}
	if items[1].ID != "a" || items[2].ID != "c" {
		t.Fatalf("non-duplicates should keep original order: %q, %q", items[1].ID, items[2].ID)
	}

	// Presentation order must not leak back into the session.
	if c.Session().Concepts[0].ID != "a" {
		t.Fatalf("display ordering mutated the session")
	}
}

func TestControllerPartition(t *testing.T) {
	c := reviewController(t)

	approved, removed, err := c.Partition()
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(approved) != 2 || len(removed) != 1 {
		t.Fatalf("expected 2 approved / 1 removed, got %d / %d", len(approved), len(removed))
	}
	if removed[0] != "b" {
		t.Fatalf("expected unselected item b removed, got %q", removed[0])
	}

	if err := c.BeginEdit("a"); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if _, _, err := c.Partition(); !errors.Is(err, ErrEditOpen) {
		t.Fatalf("expected ErrEditOpen, got %v", err)
	}

	c.Reset()
	if _, _, err := c.Partition(); !errors.Is(err, errsx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a session, got %v", err)
	}
}
