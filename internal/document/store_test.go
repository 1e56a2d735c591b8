package document

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spring-rs/spring-lsp/internal/position"
)

func TestOpenGetRoundTrip(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.toml", 1, "[web]\nport = 8080\n", LanguageTOML)

	doc, ok := s.Get("file:///a.toml")
	require.True(t, ok)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, LanguageTOML, doc.Language)
}

func TestCloseRemovesDocument(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.toml", 1, "x", LanguageTOML)
	s.Close("file:///a.toml")

	_, ok := s.Get("file:///a.toml")
	assert.False(t, ok)
}

func TestChangeWholeTextReplacement(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.toml", 1, "old", LanguageTOML)

	require.NoError(t, s.Change("file:///a.toml", 2, []Edit{{NewText: "new"}}))

	doc, _ := s.Get("file:///a.toml")
	assert.Equal(t, "new", doc.Text)
	assert.Equal(t, 2, doc.Version)
}

func TestChangeIncrementalEdit(t *testing.T) {
	s := NewStore()
	text := "[web]\nport = 8080\n"
	s.Open("file:///a.toml", 1, text, LanguageTOML)

	// Replace "8080" (bytes 12..16) with "9090".
	r := position.RangeFromByteSpan(text, 12, 16)
	require.NoError(t, s.Change("file:///a.toml", 2, []Edit{{Range: &r, NewText: "9090"}}))

	doc, _ := s.Get("file:///a.toml")
	assert.Equal(t, "[web]\nport = 9090\n", doc.Text)
}

func TestChangeOutOfOrderVersionIgnored(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.toml", 5, "text", LanguageTOML)

	require.NoError(t, s.Change("file:///a.toml", 3, []Edit{{NewText: "should-not-apply"}}))

	doc, _ := s.Get("file:///a.toml")
	assert.Equal(t, "text", doc.Text)
	assert.Equal(t, 5, doc.Version)
}

func TestChangeInvalidRangeFallsBackToWholeTextEdit(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.toml", 1, "short", LanguageTOML)

	badRange := position.Range{
		Start: position.Position{Line: 0, Character: 0},
		End:   position.Position{Line: 99, Character: 99},
	}
	require.NoError(t, s.Change("file:///a.toml", 2, []Edit{
		{Range: &badRange, NewText: "ignored"},
		{NewText: "recovered"},
	}))

	doc, _ := s.Get("file:///a.toml")
	assert.Equal(t, "recovered", doc.Text)
}

func TestConcurrentWritesToDistinctURIsDoNotRace(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			uri := "file:///concurrent-" + string(rune('a'+i%26)) + ".toml"
			s.Open(uri, 1, "text", LanguageTOML)
			_, _ = s.Get(uri)
		}()
	}
	wg.Wait()
}
