package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddOutcomes(t *testing.T) {
	s := NewSelection(nil)

	assert.Equal(t, OutcomeAdded, s.Add("prop-1"))
	assert.Equal(t, OutcomeDuplicate, s.Add("prop-1"))
	assert.Equal(t, OutcomeAdded, s.Add("prop-2"))
	assert.Equal(t, OutcomeLimitReached, s.Add("prop-3"))

	assert.Equal(t, []string{"prop-1", "prop-2"}, s.IDs())
	assert.True(t, s.IsFull())
}

func TestDuplicateWinsOverLimit(t *testing.T) {
	s := NewSelection([]string{"prop-1", "prop-2"})

	// Re-adding a selected id on a full selection is a duplicate, not a
	// limit rejection.
	assert.Equal(t, OutcomeDuplicate, s.Add("prop-2"))
}

func TestReplaceOldest(t *testing.T) {
	s := NewSelection([]string{"prop-1", "prop-2"})

	s.ReplaceOldest("prop-3")

	assert.Equal(t, []string{"prop-2", "prop-3"}, s.IDs())
}

func TestReplaceOldestWithSelectedIDIsNoOp(t *testing.T) {
	s := NewSelection([]string{"prop-1", "prop-2"})

	s.ReplaceOldest("prop-2")

	assert.Equal(t, []string{"prop-1", "prop-2"}, s.IDs())
}

func TestReplaceOldestOnEmptySelection(t *testing.T) {
	s := NewSelection(nil)

	s.ReplaceOldest("prop-1")

	assert.Equal(t, []string{"prop-1"}, s.IDs())
}

func TestRemoveAndClear(t *testing.T) {
	s := NewSelection([]string{"prop-1", "prop-2"})

	s.Remove("prop-1")
	assert.Equal(t, []string{"prop-2"}, s.IDs())
	assert.False(t, s.IsFull())

	s.Remove("missing")
	assert.Equal(t, []string{"prop-2"}, s.IDs())

	s.Clear()
	assert.Empty(t, s.IDs())
}

func TestNewSelectionSanitizesPersistedInput(t *testing.T) {
	s := NewSelection([]string{"prop-1", "", "prop-1", "prop-2", "prop-3"})

	assert.Equal(t, []string{"prop-1", "prop-2"}, s.IDs())
}
