package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/vectorsync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc() *core.Document {
	return &core.Document{
		SourceID: "docs/readme.md",
		UserID:   "alice",
		Name:     "readme.md",
		MimeType: "text/markdown",
	}
}

func TestChunker_EmptyText(t *testing.T) {
	c := NewChunker()
	assert.Empty(t, c.Chunk(testDoc(), ""))
	assert.Empty(t, c.Chunk(testDoc(), "   \n\n  "))
}

func TestChunker_SingleParagraph(t *testing.T) {
	c := NewChunker()
	chunks := c.Chunk(testDoc(), "just a small paragraph")

	require.Len(t, chunks, 1)
	assert.Equal(t, "just a small paragraph", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].SequenceIndex)
	assert.Equal(t, "docs/readme.md", chunks[0].SourceID)
	assert.Equal(t, "alice", chunks[0].UserID)
	assert.Equal(t, core.ChunkIDFor("docs/readme.md", 0), chunks[0].Id)
	assert.Positive(t, chunks[0].TokenEstimate)
}

func TestChunker_Deterministic(t *testing.T) {
	c := NewChunker(WithMaxTokens(50))

	var text strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&text, "Paragraph number %d with a bit of content in it.\n\n", i)
	}

	first := c.Chunk(testDoc(), text.String())
	second := c.Chunk(testDoc(), text.String())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].SequenceIndex, second[i].SequenceIndex)
	}
}

func TestChunker_RespectsTokenBudget(t *testing.T) {
	c := NewChunker(WithMaxTokens(40))

	var text strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&text, "Sentence %d keeps the paragraphs flowing along nicely.\n\n", i)
	}

	chunks := c.Chunk(testDoc(), text.String())
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, c.EstimateTokens(chunk.Text), 40,
			"chunk %d exceeds budget", chunk.SequenceIndex)
	}
}

func TestChunker_OversizedParagraphIsSplit(t *testing.T) {
	c := NewChunker(WithMaxTokens(30))

	// One giant paragraph with no structural boundaries.
	giant := strings.Repeat("wordiness ", 400)
	chunks := c.Chunk(testDoc(), giant)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, c.EstimateTokens(chunk.Text), 30)
	}
}

func TestChunker_SequentialIndexes(t *testing.T) {
	c := NewChunker(WithMaxTokens(30))
	var text strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&text, "Paragraph %d has its own little sentence.\n\n", i)
	}

	chunks := c.Chunk(testDoc(), text.String())
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.SequenceIndex)
	}
}

func TestChunker_HeadingTravelsWithBody(t *testing.T) {
	c := NewChunker()
	text := "# Setup\n\nInstall the thing.\n\n# Usage\n\nRun the thing."

	chunks := c.Chunk(testDoc(), text)
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0].Text, "# Setup")
	assert.Contains(t, chunks[0].Text, "Install the thing.")
}

func TestChunker_CodeFenceStaysAtomic(t *testing.T) {
	c := NewChunker()
	text := "Intro paragraph.\n\n```go\nfunc main() {\n\n\tprintln(\"hi\")\n}\n```\n\nOutro."

	chunks := c.Chunk(testDoc(), text)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "func main()")
}

func TestChunker_MetadataPropagates(t *testing.T) {
	c := NewChunker()
	chunks := c.Chunk(testDoc(), "content here")

	require.Len(t, chunks, 1)
	assert.Equal(t, "readme.md", chunks[0].Title)
	assert.Equal(t, "docs/readme.md", chunks[0].Locator)
	assert.Equal(t, "text/markdown", chunks[0].SourceType)
}

func TestSplitParagraphs(t *testing.T) {
	parts := splitParagraphs("one\n\ntwo\n\n\nthree")
	assert.Equal(t, []string{"one", "two", "three"}, parts)
}

func TestSplitSections(t *testing.T) {
	secs := splitSections("lead\n\n# A\nbody a\n## B\nbody b")
	require.Len(t, secs, 3)
	assert.Equal(t, "", secs[0].heading)
	assert.Equal(t, "# A", secs[1].heading)
	assert.Equal(t, "## B", secs[2].heading)
	assert.Contains(t, secs[2].body, "body b")
}
