// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/ingest"
)

// DefaultPageSize is the number of documents listed per page.
const DefaultPageSize = 100

// Source yields the files under a directory tree as documents. File paths
// relative to the root are the stable source IDs; modification time doubles
// as the version marker.
type Source struct {
	root     string
	pageSize int
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithPageSize sets the documents-per-page count.
// Default is DefaultPageSize.
func WithPageSize(n int) SourceOption {
	return func(s *Source) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewSource creates a filesystem source rooted at dir.
func NewSource(dir string, opts ...SourceOption) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", dir)
	}

	s := &Source{root: dir, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ ingest.Source = (*Source)(nil)

// Name identifies the source type.
func (s *Source) Name() string {
	return "filesystem"
}

// ListPage walks the tree and returns one page of documents, ordered by
// path so paging is stable across calls. The cursor is a numeric offset.
func (s *Source) ListPage(ctx context.Context, userID, cursor string) (*ingest.Page, error) {
	offset := 0
	if cursor != "" {
		var err error
		offset, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
	}

	paths, err := s.listFiles(ctx)
	if err != nil {
		return nil, err
	}

	if offset >= len(paths) {
		return &ingest.Page{Done: true}, nil
	}

	end := offset + s.pageSize
	if end > len(paths) {
		end = len(paths)
	}

	docs := make([]*core.Document, 0, end-offset)
	for _, rel := range paths[offset:end] {
		info, err := os.Stat(filepath.Join(s.root, rel))
		if err != nil {
			// File disappeared between walk and stat; the fetch step will
			// report it.
			info = nil
		}

		doc := &core.Document{
			SourceID: rel,
			UserID:   userID,
			Name:     filepath.Base(rel),
			MimeType: mimeTypeFor(rel),
		}
		if info != nil {
			doc.ModifiedTime = info.ModTime().UTC()
			doc.Version = strconv.FormatInt(info.ModTime().UnixMicro(), 10)
		}
		docs = append(docs, doc)
	}

	page := &ingest.Page{Documents: docs}
	if end >= len(paths) {
		page.Done = true
	} else {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// Fetch reads a document's raw bytes.
func (s *Source) Fetch(ctx context.Context, doc *core.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.root, doc.SourceID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ingest.NewPipelineError(ingest.KindSourceFetch, err)
		}
		return nil, err
	}
	return raw, nil
}

// listFiles returns every regular file under the root, sorted by relative
// path. Hidden files and directories are skipped.
func (s *Source) listFiles(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := d.Name()
		if d.IsDir() {
			if path != s.root && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if name[0] == '.' || !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// mimeTypeFor guesses a mime type from the file extension.
func mimeTypeFor(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "application/octet-stream"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
