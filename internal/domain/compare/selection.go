// Package compare implements the bounded property comparison selection.
package compare

// MaxSelections is the hard limit on compared properties.
const MaxSelections = 2

// Outcome is the explicit result of an Add call. There are no silent no-ops:
// every call yields one of the three outcomes so the caller can drive the
// right UI (a "replace oldest?" prompt on OutcomeLimitReached).
type Outcome string

const (
	OutcomeAdded        Outcome = "added"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeLimitReached Outcome = "limit_reached"
)

// Selection is an ordered set of up to two property ids. Insertion order is
// preserved so the oldest entry is well defined.
type Selection struct {
	ids []string
}

// NewSelection restores a selection from persisted ids, dropping duplicates
// and truncating to the limit.
func NewSelection(ids []string) *Selection {
	s := &Selection{}
	for _, id := range ids {
		if len(s.ids) >= MaxSelections {
			break
		}
		if id != "" && !s.IsSelected(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Add attempts to append an id and reports the outcome.
func (s *Selection) Add(id string) Outcome {
	if s.IsSelected(id) {
		return OutcomeDuplicate
	}
	if len(s.ids) >= MaxSelections {
		return OutcomeLimitReached
	}
	s.ids = append(s.ids, id)
	return OutcomeAdded
}

// Remove drops an id if present.
func (s *Selection) Remove(id string) {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
}

// ReplaceOldest drops the oldest-inserted id and appends newID. If newID is
// already selected nothing changes: no duplicate, no reorder.
func (s *Selection) ReplaceOldest(newID string) {
	if s.IsSelected(newID) {
		return
	}
	if len(s.ids) > 0 {
		s.ids = s.ids[1:]
	}
	s.ids = append(s.ids, newID)
}

// IsSelected reports whether an id is in the selection.
func (s *Selection) IsSelected(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IsFull reports whether the limit is reached.
func (s *Selection) IsFull() bool {
	return len(s.ids) >= MaxSelections
}

// IDs returns the selected ids in insertion order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}
