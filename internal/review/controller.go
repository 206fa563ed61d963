package review

import (
	"errors"
	"sort"

	errsx "github.com/yungbote/conceptgraph-backend/internal/pkg/errors"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

// ErrEditOpen is returned when a partition is requested while an edit is
// still open. Approval is blocked rather than submitting the item with
// its pre-edit state.
var ErrEditOpen = errors.New("an edit is still open")

// EditFields carries the user-editable fields of an item. Nil means
// "leave unchanged".
type EditFields struct {
	Name            *string
	Definition      *string
	Domain          *string
	ComplexityScore *int
}

// Controller owns the mutable review session for the lifetime of the
// review step. All mutations are synchronous and replace the concepts
// slice wholesale, so observers never see a partially applied edit.
// Controller is not safe for concurrent use; the caller's event loop is
// expected to serialize calls.
type Controller struct {
	log       *logger.Logger
	session   *Session
	step      Step
	editingID string
}

func NewController(baseLog *logger.Logger) *Controller {
	return &Controller{
		log:  baseLog.With("component", "ReviewController"),
		step: StepInput,
	}
}

func (c *Controller) Step() Step { return c.step }

// Session returns the current session, or nil outside the review step.
func (c *Controller) Session() *Session { return c.session }

// AttachSession adopts a fetched session and moves the workflow to the
// review step.
func (c *Controller) AttachSession(s Session) {
	c.session = &s
	c.editingID = ""
	c.step = StepReview
}

// Reset clears local state and returns the workflow to the input step.
func (c *Controller) Reset() {
	c.session = nil
	c.editingID = ""
	c.step = StepInput
}

// Complete discards the session after a successful commit.
func (c *Controller) Complete() {
	c.session = nil
	c.editingID = ""
	c.step = StepComplete
}

func (c *Controller) find(id string) (int, bool) {
	if c.session == nil {
		return 0, false
	}
	for i, it := range c.session.Concepts {
		if it.ID == id {
			return i, true
		}
	}
	return 0, false
}

// replace swaps item i for next in a fresh slice.
func (c *Controller) replace(i int, next Item) {
	concepts := make([]Item, len(c.session.Concepts))
	copy(concepts, c.session.Concepts)
	concepts[i] = next
	c.session.Concepts = concepts
}

// ToggleSelection flips whether the item will be committed on approval.
// The user-modified flag is one-way: two toggles restore the selection
// but the item stays marked as touched.
func (c *Controller) ToggleSelection(id string) error {
	i, ok := c.find(id)
	if !ok {
		return errsx.ErrNotFound
	}
	next := c.session.Concepts[i]
	next.IsSelected = !next.IsSelected
	next.UserModified = true
	c.replace(i, next)
	return nil
}

// BeginEdit opens the edit flow for an item.
func (c *Controller) BeginEdit(id string) error {
	if _, ok := c.find(id); !ok {
		return errsx.ErrNotFound
	}
	c.editingID = id
	return nil
}

// EditingID reports the item currently being edited, if any.
func (c *Controller) EditingID() (string, bool) {
	return c.editingID, c.editingID != ""
}

// SaveEdit applies the fields onto the item and accepts it: saving an
// edit is itself a selection.
func (c *Controller) SaveEdit(id string, fields EditFields) error {
	i, ok := c.find(id)
	if !ok {
		return errsx.ErrNotFound
	}
	next := c.session.Concepts[i]
	if fields.Name != nil {
		next.Name = *fields.Name
	}
	if fields.Definition != nil {
		next.Definition = *fields.Definition
	}
	if fields.Domain != nil {
		next.Domain = *fields.Domain
	}
	if fields.ComplexityScore != nil {
		next.ComplexityScore = *fields.ComplexityScore
	}
	next.UserModified = true
	next.IsSelected = true
	c.replace(i, next)
	if c.editingID == id {
		c.editingID = ""
	}
	return nil
}

// CancelEdit abandons an open edit without touching the item.
func (c *Controller) CancelEdit() {
	c.editingID = ""
}

// ApplyResolution looks up the item's conflict record and delegates to
// Resolve. A missing conflict or missing match pointer is a
// data-integrity warning (contract mismatch with the collaborators):
// the item is left unchanged and nothing is raised. Merge additionally
// opens the edit flow on the collapsed item so the reviewer lands in
// edit mode pre-populated with the proposal's current values.
func (c *Controller) ApplyResolution(id string, strategy Strategy) error {
	i, ok := c.find(id)
	if !ok {
		return errsx.ErrNotFound
	}
	item := c.session.Concepts[i]
	conflict, ok := c.session.ConflictFor(item.Name)
	if !ok {
		c.log.Warn("no conflict record for item, leaving unchanged", "item_id", id, "name", item.Name)
		return nil
	}
	next, err := Resolve(item, conflict, strategy)
	if err != nil {
		if errors.Is(err, ErrMissingMatch) {
			c.log.Warn("resolution skipped, matched existing id missing", "item_id", id, "strategy", strategy.String())
			return nil
		}
		return err
	}
	c.replace(i, next)
	if strategy == StrategyMerge {
		c.editingID = next.ID
	}
	return nil
}

// DisplayItems returns the concepts in presentation order: duplicates
// first, otherwise original order.
func (c *Controller) DisplayItems() []Item {
	if c.session == nil {
		return nil
	}
	out := make([]Item, len(c.session.Concepts))
	copy(out, c.session.Concepts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsDuplicate && !out[j].IsDuplicate
	})
	return out
}

// Partition splits the session's concepts into the approved list and the
// rejected ids. Refused while an edit is open: the edited-but-unsaved
// item would otherwise be submitted with its pre-edit selection state.
func (c *Controller) Partition() (approved []Item, removedIDs []string, err error) {
	if c.session == nil {
		return nil, nil, errsx.ErrNotFound
	}
	if c.editingID != "" {
		return nil, nil, ErrEditOpen
	}
	approved = make([]Item, 0, len(c.session.Concepts))
	removedIDs = make([]string, 0)
	for _, it := range c.session.Concepts {
		if it.IsSelected {
			approved = append(approved, it)
		} else {
			removedIDs = append(removedIDs, it.ID)
		}
	}
	return approved, removedIDs, nil
}
