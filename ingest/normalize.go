package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	crlfRe       = regexp.MustCompile(`\r\n?`)
	wsRunRe      = regexp.MustCompile(`[ \t]+`)
	trailingWsRe = regexp.MustCompile(`[ \t]+\n`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	zeroWidthRe  = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}]`)
)

// NormalizeText converts raw document text into canonical form: NFC unicode
// normalization, LF line endings, no zero-width characters, single spaces for
// whitespace runs, and at most one blank line between paragraphs. Identical
// content normalizes to identical text, which is what makes the content hash
// a reliable change signal.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = crlfRe.ReplaceAllString(text, "\n")
	text = strings.ReplaceAll(text, "\u00A0", " ")
	text = zeroWidthRe.ReplaceAllString(text, "")
	text = wsRunRe.ReplaceAllString(text, " ")
	text = trailingWsRe.ReplaceAllString(text, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ContentHash returns the hex-encoded SHA-256 digest of text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// NormalizeAndHash normalizes raw text and returns it with its content hash.
func NormalizeAndHash(raw string) (string, string) {
	text := NormalizeText(raw)
	return text, ContentHash(text)
}
