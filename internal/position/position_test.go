package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromOffset(t *testing.T) {
	text := "abc\nd\U0001F600f"

	t.Run("start of text", func(t *testing.T) {
		assert.Equal(t, Position{Line: 0, Character: 0}, FromOffset(text, 0))
	})

	t.Run("after newline", func(t *testing.T) {
		assert.Equal(t, Position{Line: 1, Character: 0}, FromOffset(text, 4))
	})

	t.Run("after astral character counts as two UTF-16 units", func(t *testing.T) {
		// "d" then the emoji (4 bytes, 2 UTF-16 units) then "f"
		emojiStart := 5
		afterEmoji := emojiStart + len("\U0001F600")
		pos := FromOffset(text, afterEmoji)
		assert.Equal(t, Position{Line: 1, Character: 3}, pos)
	})

	t.Run("offset past end clamps to text length", func(t *testing.T) {
		end := FromOffset(text, len(text))
		assert.Equal(t, end, FromOffset(text, len(text)+50))
	})
}

func TestToOffset(t *testing.T) {
	text := "abc\ndef"

	t.Run("round trips with FromOffset", func(t *testing.T) {
		for _, off := range []int{0, 1, 3, 4, 5, 7} {
			pos := FromOffset(text, off)
			assert.Equal(t, off, ToOffset(text, pos), "offset %d", off)
		}
	})

	t.Run("past end of text returns text length", func(t *testing.T) {
		assert.Equal(t, len(text), ToOffset(text, Position{Line: 99, Character: 0}))
	})
}

func TestRangeFromByteSpanRoundTrip(t *testing.T) {
	text := "[web]\nport = 8080\n"
	r := RangeFromByteSpan(text, 1, 4)
	start, end := ByteSpan(text, r)
	assert.Equal(t, 1, start)
	assert.Equal(t, 4, end)
	assert.Equal(t, "web", text[start:end])
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 8}}

	assert.True(t, r.Contains(Position{Line: 1, Character: 2}))
	assert.True(t, r.Contains(Position{Line: 1, Character: 8}))
	assert.True(t, r.Contains(Position{Line: 1, Character: 5}))
	assert.False(t, r.Contains(Position{Line: 1, Character: 1}))
	assert.False(t, r.Contains(Position{Line: 0, Character: 5}))
	assert.False(t, r.Contains(Position{Line: 2, Character: 0}))
}
