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

	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
)

// Decision is the outcome of change detection for one document.
type Decision int

const (
	// DecisionSkip means the stored content is current; no work is needed.
	DecisionSkip Decision = iota + 1
	// DecisionReingest means the document is new or changed.
	DecisionReingest
)

// String returns the lowercase name of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionReingest:
		return "reingest"
	default:
		return "unknown"
	}
}

// ChangeDetector decides whether a document needs re-ingestion by comparing
// its new content hash against the last successfully ingested state.
type ChangeDetector struct {
	index storage.ContentIndexRepository
	force bool
}

// NewChangeDetector creates a detector backed by the content index.
// When force is true every document is re-ingested regardless of stored state.
func NewChangeDetector(index storage.ContentIndexRepository, force bool) (*ChangeDetector, error) {
	if index == nil {
		return nil, ErrContentIndexRequired
	}
	return &ChangeDetector{index: index, force: force}, nil
}

// Decide returns DecisionSkip iff a prior entry exists for (userID, sourceID)
// and its content hash equals newHash. The version is a secondary signal:
// when both hashes are empty, matching versions also count as unchanged.
// A missing entry (first ingest) or any mismatch means DecisionReingest.
// The check runs before any chunking or embedding, so unchanged documents
// cost zero provider calls.
func (d *ChangeDetector) Decide(ctx context.Context, userID, sourceID, newHash, newVersion string) (Decision, *core.ContentIndexEntry, error) {
	if d.force {
		return DecisionReingest, nil, nil
	}

	entry, err := d.index.GetEntry(ctx, userID, sourceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return DecisionReingest, nil, nil
		}
		return 0, nil, fmt.Errorf("change detection lookup: %w", err)
	}

	if newHash != "" && entry.ContentHash == newHash {
		return DecisionSkip, entry, nil
	}
	if newHash == "" && entry.ContentHash == "" && newVersion != "" && entry.Version == newVersion {
		return DecisionSkip, entry, nil
	}

	return DecisionReingest, entry, nil
}
