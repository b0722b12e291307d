package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newest-first batch m5..m1
func batchFixture() []Message {
	return []Message{
		{ID: "m5", Content: "five"},
		{ID: "m4", Content: "four"},
		{ID: "m3", Content: "three"},
		{ID: "m2", Content: "two"},
		{ID: "m1", Content: "one"},
	}
}

func deltaIDs(delta []Message) []string {
	ids := make([]string, 0, len(delta))
	for _, m := range delta {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestComputeDelta(t *testing.T) {
	t.Run("cursor inside batch yields chronological delta", func(t *testing.T) {
		cursor := NewCursor()
		cursor.Restore("m3")

		delta := computeDelta(cursor, batchFixture())

		assert.Equal(t, []string{"m4", "m5"}, deltaIDs(delta))
	})

	t.Run("unknown cursor under-approximates to latest only", func(t *testing.T) {
		cursor := NewCursor()
		cursor.Restore("m99")

		delta := computeDelta(cursor, batchFixture())

		assert.Equal(t, []string{"m5"}, deltaIDs(delta))
	})

	t.Run("unset cursor yields latest only", func(t *testing.T) {
		delta := computeDelta(NewCursor(), batchFixture())

		assert.Equal(t, []string{"m5"}, deltaIDs(delta))
	})

	t.Run("latest equals cursor yields empty delta", func(t *testing.T) {
		cursor := NewCursor()
		cursor.Restore("m5")

		delta := computeDelta(cursor, batchFixture())

		assert.Empty(t, delta)
	})

	t.Run("empty batch yields empty delta", func(t *testing.T) {
		cursor := NewCursor()
		cursor.Restore("m3")

		delta := computeDelta(cursor, nil)

		assert.Empty(t, delta)
		last, ok := cursor.LastSeen()
		assert.True(t, ok)
		assert.Equal(t, "m3", last)
	})

	t.Run("cursor one behind latest yields single message", func(t *testing.T) {
		cursor := NewCursor()
		cursor.Restore("m4")

		delta := computeDelta(cursor, batchFixture())

		assert.Equal(t, []string{"m5"}, deltaIDs(delta))
	})
}

func TestCursorAdvance(t *testing.T) {
	cursor := NewCursor()

	_, ok := cursor.LastSeen()
	assert.False(t, ok)

	cursor.Advance("m7")
	last, ok := cursor.LastSeen()
	assert.True(t, ok)
	assert.Equal(t, "m7", last)
}
