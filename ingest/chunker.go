package ingest

import (
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/poiesic/vectorsync/core"
)

const (
	// DefaultMaxTokensPerChunk is the default token budget per chunk.
	DefaultMaxTokensPerChunk = 350
)

var headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+.*$`)

// Chunker splits normalized text into bounded-size chunks with stable
// positional IDs. Chunking is deterministic: identical input yields identical
// sequence indexes and therefore identical chunk IDs, which is what makes
// supersession of old chunks correct.
type Chunker struct {
	maxTokens int
	enc       *tiktoken.Tiktoken
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithMaxTokens sets the per-chunk token budget.
// Default is DefaultMaxTokensPerChunk.
func WithMaxTokens(n int) ChunkerOption {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// NewChunker creates a chunker. Token counts use the cl100k_base encoding
// when available, falling back to a bytes/4 estimate (the encoding tables
// may be unavailable in offline environments).
func NewChunker(opts ...ChunkerOption) *Chunker {
	c := &Chunker{maxTokens: DefaultMaxTokensPerChunk}
	for _, opt := range opts {
		opt(c)
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err == nil {
		c.enc = enc
	}
	return c
}

// MaxTokens returns the per-chunk token budget.
func (c *Chunker) MaxTokens() int {
	return c.maxTokens
}

// EstimateTokens returns the token count estimate for text.
func (c *Chunker) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	if c.enc != nil {
		return len(c.enc.Encode(text, nil, nil))
	}
	est := (len(text) + 3) / 4
	if est < 1 {
		est = 1
	}
	return est
}

// Chunk splits normalized text into an ordered sequence of chunks for doc.
// Breaks prefer structural boundaries: markdown headings start a new block,
// blank lines separate paragraphs, and fenced code blocks stay atomic. A
// block that alone exceeds the budget is hard-split. Every produced chunk's
// token estimate is <= the budget.
func (c *Chunker) Chunk(doc *core.Document, text string) []*core.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	blocks := c.splitBlocks(text)
	packed := c.pack(blocks)

	chunks := make([]*core.Chunk, len(packed))
	for i, span := range packed {
		chunks[i] = &core.Chunk{
			Id:            core.ChunkIDFor(doc.SourceID, i),
			SourceID:      doc.SourceID,
			UserID:        doc.UserID,
			SequenceIndex: i,
			Text:          span,
			TokenEstimate: c.EstimateTokens(span),
			Title:         doc.Name,
			Locator:       doc.SourceID,
			SourceType:    doc.MimeType,
		}
	}
	return chunks
}

// splitBlocks breaks text into structural blocks: each markdown section is
// split into paragraphs, with the section heading prefixed onto its first
// paragraph so heading context travels with the content. Fenced code blocks
// are kept whole.
func (c *Chunker) splitBlocks(text string) []string {
	var blocks []string

	for _, section := range splitSections(text) {
		paragraphs := splitParagraphs(section.body)
		for i, p := range paragraphs {
			if i == 0 && section.heading != "" {
				p = section.heading + "\n" + p
			}
			blocks = append(blocks, p)
		}
		if len(paragraphs) == 0 && section.heading != "" {
			blocks = append(blocks, section.heading)
		}
	}

	return blocks
}

// pack greedily groups blocks into spans whose token estimate stays within
// the budget. Oversized blocks are hard-split first.
func (c *Chunker) pack(blocks []string) []string {
	var spans []string
	var cur []string
	curTokens := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		spans = append(spans, strings.TrimSpace(strings.Join(cur, "\n")))
		cur = nil
		curTokens = 0
	}

	for _, block := range blocks {
		for _, piece := range c.splitOversized(block) {
			// The joining newline can itself tokenize, so account a token
			// per separator to keep the bound honest.
			tokens := c.EstimateTokens(piece)
			cost := tokens
			if len(cur) > 0 {
				cost++
			}
			if curTokens+cost > c.maxTokens && len(cur) > 0 {
				flush()
				cost = tokens
			}
			cur = append(cur, piece)
			curTokens += cost
		}
	}
	flush()

	return spans
}

// splitOversized returns block unchanged when it fits the budget; otherwise
// it is recursively halved at rune boundaries until every piece fits.
func (c *Chunker) splitOversized(block string) []string {
	if c.EstimateTokens(block) <= c.maxTokens {
		return []string{block}
	}

	runes := []rune(block)
	if len(runes) <= 1 {
		return []string{block}
	}
	mid := len(runes) / 2

	// Prefer splitting at a nearby line or space boundary.
	for off := 0; off < mid/2; off++ {
		if runes[mid-off] == '\n' || runes[mid-off] == ' ' {
			mid = mid - off
			break
		}
		if runes[mid+off] == '\n' || runes[mid+off] == ' ' {
			mid = mid + off
			break
		}
	}

	left := strings.TrimSpace(string(runes[:mid]))
	right := strings.TrimSpace(string(runes[mid:]))

	var pieces []string
	if left != "" {
		pieces = append(pieces, c.splitOversized(left)...)
	}
	if right != "" {
		pieces = append(pieces, c.splitOversized(right)...)
	}
	return pieces
}

type section struct {
	heading string
	body    string
}

// splitSections splits markdown text at heading lines. Text without headings
// is a single section with an empty heading.
func splitSections(text string) []section {
	matches := headingRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []section{{body: text}}
	}

	var sections []section
	if lead := strings.TrimSpace(text[:matches[0][0]]); lead != "" {
		sections = append(sections, section{body: lead})
	}
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		heading := strings.TrimSpace(text[m[0]:m[1]])
		body := strings.TrimLeft(text[m[1]:end], "\n")
		sections = append(sections, section{heading: heading, body: body})
	}
	return sections
}

// splitParagraphs splits a section body at blank lines, keeping fenced code
// blocks as single atomic paragraphs.
func splitParagraphs(body string) []string {
	if strings.TrimSpace(body) == "" {
		return nil
	}

	var parts []string
	var buf []string
	inCode := false

	emit := func() {
		joined := strings.TrimSpace(strings.Join(buf, "\n"))
		if joined != "" {
			parts = append(parts, joined)
		}
		buf = nil
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "```"):
			if !inCode {
				emit()
				buf = append(buf, line)
				inCode = true
			} else {
				buf = append(buf, line)
				emit()
				inCode = false
			}
		case inCode:
			buf = append(buf, line)
		case trimmed == "":
			emit()
		default:
			buf = append(buf, line)
		}
	}
	emit()

	return parts
}
