package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", NormalizeText(""))
	})

	t.Run("converts CRLF to LF", func(t *testing.T) {
		assert.Equal(t, "a\nb\nc", NormalizeText("a\r\nb\rc"))
	})

	t.Run("replaces non-breaking spaces", func(t *testing.T) {
		assert.Equal(t, "a b", NormalizeText("a\u00A0b"))
	})

	t.Run("strips zero-width characters", func(t *testing.T) {
		assert.Equal(t, "ab", NormalizeText("a\u200Bb\uFEFF"))
	})

	t.Run("collapses whitespace runs", func(t *testing.T) {
		assert.Equal(t, "a b c", NormalizeText("a  \t b\t\tc"))
	})

	t.Run("removes trailing line whitespace", func(t *testing.T) {
		assert.Equal(t, "a\nb", NormalizeText("a   \nb"))
	})

	t.Run("caps consecutive blank lines", func(t *testing.T) {
		assert.Equal(t, "a\n\nb", NormalizeText("a\n\n\n\n\nb"))
	})

	t.Run("trims leading and trailing whitespace", func(t *testing.T) {
		assert.Equal(t, "body", NormalizeText("\n\n  body  \n\n"))
	})

	t.Run("unifies composed and decomposed forms", func(t *testing.T) {
		// "é" as a single code point vs e + combining acute
		assert.Equal(t, NormalizeText("café"), NormalizeText("café"))
	})
}

func TestContentHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, ContentHash("hello"), ContentHash("hello"))
	})

	t.Run("differs for different content", func(t *testing.T) {
		assert.NotEqual(t, ContentHash("hello"), ContentHash("hello!"))
	})

	t.Run("hex encoded sha256", func(t *testing.T) {
		assert.Len(t, ContentHash("anything"), 64)
	})
}

func TestNormalizeAndHash(t *testing.T) {
	// Content that normalizes identically must hash identically.
	_, h1 := NormalizeAndHash("hello   world\r\n")
	_, h2 := NormalizeAndHash("hello world\n")
	assert.Equal(t, h1, h2)

	text, _ := NormalizeAndHash("  a  b  ")
	assert.Equal(t, "a b", text)
}
