package ingest

import (
	"context"

	"github.com/poiesic/vectorsync/core"
)

// Page is one page of documents listed from a content source. Deleted
// carries the source IDs of documents the provider reports as removed or
// trashed; the pipeline drops their stored chunks during the run.
type Page struct {
	Documents  []*core.Document
	Deleted    []string
	NextCursor string
	Done       bool
}

// Source yields a paged sequence of documents from an external content
// provider. Implementations live outside this package; the pipeline only
// depends on paging and fetching.
type Source interface {
	// Name identifies the source type, used in chunk metadata and logs.
	Name() string

	// ListPage returns the page at cursor. An empty cursor means the first
	// page. When Done is true the returned NextCursor is ignored.
	ListPage(ctx context.Context, userID, cursor string) (*Page, error)

	// Fetch retrieves the raw content of a document.
	Fetch(ctx context.Context, doc *core.Document) ([]byte, error)
}

// Parser turns raw fetched bytes into text for normalization.
// It returns ErrUnsupportedContent for formats it cannot handle.
type Parser interface {
	Parse(doc *core.Document, raw []byte) (string, error)
}
