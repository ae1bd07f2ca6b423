package filesystem

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/ingest"
)

// Parser extracts text from fetched file bytes. Only textual content is
// supported; binary files are rejected with ErrUnsupportedContent so the
// pipeline records them without embedding anything.
type Parser struct{}

// NewParser creates a plain-text parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ ingest.Parser = (*Parser)(nil)

// Parse returns the file content as text. Content containing NUL bytes or
// invalid UTF-8 is treated as binary.
func (p *Parser) Parse(doc *core.Document, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	sniff := raw
	if len(sniff) > 8192 {
		sniff = sniff[:8192]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return "", fmt.Errorf("%w: %s looks binary", ingest.ErrUnsupportedContent, doc.MimeType)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ingest.ErrUnsupportedContent, doc.MimeType)
	}

	return string(raw), nil
}
