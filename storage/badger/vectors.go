package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
)

// VectorStore implements storage.VectorRepository for BadgerDB.
//
// Live chunks sit under per-user key prefixes, so one user's namespace can
// be scanned without touching another's, with a secondary index keyed by
// (user, source). Chunks from an in-flight ingestion pass are staged under
// a separate (user, source) prefix and swapped onto the live keys in a
// single transaction at promotion time, so the live set for a source only
// ever changes wholesale.
type VectorStore struct {
	backend *Backend
	genSeq  *badger.Sequence
}

var _ storage.VectorRepository = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore.
func NewVectorStore(backend *Backend) (*VectorStore, error) {
	genSeq, err := backend.GetSequence(generationSeq)
	if err != nil {
		return nil, err
	}

	return &VectorStore{
		backend: backend,
		genSeq:  genSeq,
	}, nil
}

// Close releases the generation sequence.
func (s *VectorStore) Close() error {
	return s.genSeq.Release()
}

// NextGeneration reserves a generation number for an ingestion pass.
func (s *VectorStore) NextGeneration(ctx context.Context) (uint64, error) {
	gen, err := s.genSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call; 0 means "no generation"
	if gen == 0 {
		gen, err = s.genSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return gen, nil
}

// StageChunks writes chunks into the staging area for their source.
func (s *VectorStore) StageChunks(ctx context.Context, chunks ...*core.StoredChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeStagedChunkKey(chunk.Chunk.UserID, chunk.Chunk.SourceID, chunk.Chunk.Id)
			if err := tx.Set(key, storage.MarshalStoredChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// PromoteStaged swaps the staged chunks named in keep onto the live keys for
// the source, deletes live chunks outside the keep set, and clears the
// staging area, all in one transaction.
func (s *VectorStore) PromoteStaged(ctx context.Context, userID, sourceID string, generation uint64, keep []core.ID) error {
	keepSet := make(map[core.ID]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		staged, err := readStagedChunks(tx, userID, sourceID)
		if err != nil {
			return err
		}

		// Every kept ID must have been staged during this pass; a missing
		// one means the caller is promoting a set it never fully wrote.
		for _, id := range keep {
			if staged[id] == nil {
				return storage.ErrNotFound
			}
		}

		live, err := listSourceIDs(tx, userID, sourceID)
		if err != nil {
			return err
		}
		for _, id := range live {
			if keepSet[id] {
				continue
			}
			if err := tx.Delete(makeChunkKey(userID, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkSourceKey(userID, sourceID, id)); err != nil {
				return err
			}
		}

		for _, id := range keep {
			chunk := staged[id]
			chunk.Finalized = true
			chunk.Generation = generation
			if err := tx.Set(makeChunkKey(userID, id), storage.MarshalStoredChunk(chunk)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkSourceKey(userID, sourceID, id), storage.MarshalID(id)); err != nil {
				return err
			}
		}

		// Clear the staging area, promoted and leftover alike
		for id := range staged {
			if err := tx.Delete(makeStagedChunkKey(userID, sourceID, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteSource removes every live and staged chunk for a source.
func (s *VectorStore) DeleteSource(ctx context.Context, userID, sourceID string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		live, err := listSourceIDs(tx, userID, sourceID)
		if err != nil {
			return err
		}
		for _, id := range live {
			if err := tx.Delete(makeChunkKey(userID, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkSourceKey(userID, sourceID, id)); err != nil {
				return err
			}
		}

		staged, err := readStagedChunks(tx, userID, sourceID)
		if err != nil {
			return err
		}
		for id := range staged {
			if err := tx.Delete(makeStagedChunkKey(userID, sourceID, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single stored chunk by ID.
func (s *VectorStore) GetChunk(ctx context.Context, userID string, id core.ID) (*core.StoredChunk, error) {
	var chunk *core.StoredChunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		chunk, err = readStoredChunk(tx, makeChunkKey(userID, id))
		if err != nil {
			return err
		}
		if chunk == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// ListSourceChunkIDs retrieves the IDs of the live chunks for a source,
// plus staged ones when includePending is set.
func (s *VectorStore) ListSourceChunkIDs(ctx context.Context, userID, sourceID string, includePending bool) ([]core.ID, error) {
	var ids []core.ID

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		ids, err = listSourceIDs(tx, userID, sourceID)
		if err != nil {
			return err
		}

		if includePending {
			seen := make(map[core.ID]bool, len(ids))
			for _, id := range ids {
				seen[id] = true
			}
			staged, err := readStagedChunks(tx, userID, sourceID)
			if err != nil {
				return err
			}
			for id := range staged {
				if !seen[id] {
					ids = append(ids, id)
				}
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindSimilar finds live chunks similar to the given vector within the
// user's namespace. Staged chunks live under a separate prefix and are
// never scanned.
func (s *VectorStore) FindSimilar(ctx context.Context, userID string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	var results []*core.SearchResult

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeUserChunkPrefix(userID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.StoredChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalStoredChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil {
				continue
			}

			// Skip chunks without embeddings
			if len(chunk.Vector) == 0 {
				continue
			}

			// Cosine similarity (dot product for normalized vectors)
			similarity := dotProduct(vector, chunk.Vector)

			if similarity >= minSimilarity {
				results = append(results, &core.SearchResult{
					Chunk: chunk,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// listSourceIDs collects the live chunk IDs for a source from the source
// index, in key order.
func listSourceIDs(tx *badger.Txn, userID, sourceID string) ([]core.ID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeChunkSourcePrefix(userID, sourceID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readStagedChunks loads the staging area for a source, keyed by chunk ID.
func readStagedChunks(tx *badger.Txn, userID, sourceID string) (map[core.ID]*core.StoredChunk, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeStagedChunkPrefix(userID, sourceID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	staged := make(map[core.ID]*core.StoredChunk)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var chunk *core.StoredChunk
		err := iter.Item().Value(func(val []byte) error {
			var err error
			chunk, err = storage.UnmarshalStoredChunk(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		staged[chunk.Chunk.Id] = chunk
	}
	return staged, nil
}

// readStoredChunk reads and unmarshals a chunk, returning nil if missing.
func readStoredChunk(tx *badger.Txn, key []byte) (*core.StoredChunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.StoredChunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalStoredChunk(val)
		return err
	})
	return chunk, err
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
