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


package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
)

// Persister applies the vector persistence half of the pipeline: staging
// embedded chunks during a pass and the finalize step that atomically
// promotes a document's new chunk set over the old one.
type Persister struct {
	vectors storage.VectorRepository
	index   storage.ContentIndexRepository
	logger  *slog.Logger
}

// NewPersister creates a Persister over the vector store and content index.
func NewPersister(vectors storage.VectorRepository, index storage.ContentIndexRepository) (*Persister, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if index == nil {
		return nil, ErrContentIndexRequired
	}
	return &Persister{
		vectors: vectors,
		index:   index,
		logger:  slog.Default().With("component", "persister"),
	}, nil
}

// UpsertPending stages embedded chunks tagged with the pass generation.
// Staged chunks sit apart from the live chunk set and are invisible to
// queries until FinalizeDocument promotes them, so readers keep seeing the
// complete previous version throughout the pass. It never deletes.
func (p *Persister) UpsertPending(ctx context.Context, generation uint64, chunks []*core.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return NewPipelineError(KindConsistency,
			fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors)))
	}

	stored := make([]*core.StoredChunk, len(chunks))
	for i, chunk := range chunks {
		stored[i] = &core.StoredChunk{
			Chunk:      *chunk,
			Vector:     vectors[i],
			Generation: generation,
			Finalized:  false,
		}
	}

	if err := p.vectors.StageChunks(ctx, stored...); err != nil {
		return fmt.Errorf("staging %d pending chunks: %w", len(stored), err)
	}
	return nil
}

// FinalizeDocument promotes a document's new chunk set after every chunk of
// the current pass has been staged. The promotion is a single storage
// transaction that installs the new chunks as the live set, removes the
// superseded version, and clears staging leftovers, then the content index
// entry is replaced with the new hash/version and chunk-id list. From the
// caller's perspective the document flips from the complete old version to
// the complete new version with nothing in between.
func (p *Persister) FinalizeDocument(ctx context.Context, doc *core.Document, contentHash string, generation uint64, newChunkIDs []core.ID) error {
	if err := p.vectors.PromoteStaged(ctx, doc.UserID, doc.SourceID, generation, newChunkIDs); err != nil {
		if isNotFound(err) {
			// A new chunk missing from staging means the pass wrote a
			// partial set; promoting would break the all-or-nothing
			// guarantee.
			return NewPipelineError(KindConsistency,
				fmt.Errorf("promoting %d chunks for %s: %w", len(newChunkIDs), doc.SourceID, err))
		}
		return fmt.Errorf("promoting %d chunks for %s: %w", len(newChunkIDs), doc.SourceID, err)
	}

	entry := &core.ContentIndexEntry{
		UserID:         doc.UserID,
		SourceID:       doc.SourceID,
		ContentHash:    contentHash,
		Version:        doc.Version,
		ChunkIDs:       newChunkIDs,
		Generation:     generation,
		LastIngestedAt: time.Now().UTC(),
	}
	if err := p.index.PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("updating content index for %s: %w", doc.SourceID, err)
	}
	return nil
}

// DeleteDocument removes every stored chunk and the index entry for a source.
// Used when the source reports the document gone.
func (p *Persister) DeleteDocument(ctx context.Context, userID, sourceID string) error {
	if err := p.vectors.DeleteSource(ctx, userID, sourceID); err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", sourceID, err)
	}
	if err := p.index.DeleteEntry(ctx, userID, sourceID); err != nil && !isNotFound(err) {
		return fmt.Errorf("deleting content index entry for %s: %w", sourceID, err)
	}
	p.logger.Debug("deleted document", "source", sourceID)
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
