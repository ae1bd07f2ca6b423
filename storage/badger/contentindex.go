package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
)

// ContentIndex implements storage.ContentIndexRepository for BadgerDB.
type ContentIndex struct {
	backend *Backend
}

var _ storage.ContentIndexRepository = (*ContentIndex)(nil)

// NewContentIndex creates a new ContentIndex.
func NewContentIndex(backend *Backend) *ContentIndex {
	return &ContentIndex{
		backend: backend,
	}
}

// Close is a no-op; the backend owns all resources.
func (r *ContentIndex) Close() error {
	return nil
}

// GetEntry retrieves the entry for a (user, source) pair.
func (r *ContentIndex) GetEntry(ctx context.Context, userID, sourceID string) (*core.ContentIndexEntry, error) {
	var entry *core.ContentIndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeContentIndexKey(userID, sourceID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalContentIndexEntry(val)
			return unmarshalErr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return entry, nil
}

// PutEntry creates or replaces the entry.
func (r *ContentIndex) PutEntry(ctx context.Context, entry *core.ContentIndexEntry) error {
	if err := core.ValidateContentIndexEntry(entry); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry.UpdatedAt = time.Now().UTC()
		key := makeContentIndexKey(entry.UserID, entry.SourceID)
		if err := tx.Set(key, storage.MarshalContentIndexEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteEntry removes the entry for a (user, source) pair.
func (r *ContentIndex) DeleteEntry(ctx context.Context, userID, sourceID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeContentIndexKey(userID, sourceID)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListEntries retrieves all entries for a user, ordered by source ID.
func (r *ContentIndex) ListEntries(ctx context.Context, userID string) ([]*core.ContentIndexEntry, error) {
	var entries []*core.ContentIndexEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeContentIndexPrefix(userID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.ContentIndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalContentIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return entries, nil
}
