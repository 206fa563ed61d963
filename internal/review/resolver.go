package review

import (
	"errors"
	"fmt"
)

// ErrMissingMatch is returned when Overwrite or Merge is requested for an
// item that has no matched existing node. It signals a contract mismatch
// with the collaborators, not a user error; callers log it and leave the
// item unchanged.
var ErrMissingMatch = errors.New("resolution requires a matched existing concept")

// Resolve maps an item and its conflict record to the item's next state
// under the chosen strategy. Pure and total over the three strategies:
//
//   - KeepExisting: discard the proposal, leave the existing node alone.
//   - Overwrite: the proposal becomes the authoritative content for the
//     existing node; the item's id is collapsed onto the existing id and
//     the item is selected.
//   - Merge: the item collapses onto the existing id but selection is
//     left untouched; the caller routes the reviewer into the edit flow
//     to hand-blend old and new content before accepting.
func Resolve(item Item, conflict Conflict, strategy Strategy) (Item, error) {
	switch strategy {
	case StrategyKeepExisting:
		item.IsSelected = false
		item.UserModified = true
		return item, nil
	case StrategyOverwrite:
		if item.MatchedExistingID == "" {
			return item, ErrMissingMatch
		}
		out := CollapseOntoExisting(item, item.MatchedExistingID)
		out.IsSelected = true
		out.UserModified = true
		return out, nil
	case StrategyMerge:
		if item.MatchedExistingID == "" {
			return item, ErrMissingMatch
		}
		return CollapseOntoExisting(item, item.MatchedExistingID), nil
	}
	return item, fmt.Errorf("unknown resolution strategy %d", int(strategy))
}
