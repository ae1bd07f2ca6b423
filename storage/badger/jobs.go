package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
)

// JobStore implements storage.JobRepository for BadgerDB.
type JobStore struct {
	backend *Backend
}

var _ storage.JobRepository = (*JobStore)(nil)

// NewJobStore creates a new JobStore.
func NewJobStore(backend *Backend) *JobStore {
	return &JobStore{
		backend: backend,
	}
}

// Close is a no-op; the backend owns all resources.
func (r *JobStore) Close() error {
	return nil
}

// CreateJob persists a new job.
func (r *JobStore) CreateJob(ctx context.Context, job *core.IngestionJob) error {
	if err := core.ValidateJobStatus(job.Status); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(job.Id)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		now := time.Now().UTC()
		if job.CreatedAt.IsZero() {
			job.CreatedAt = now
		}
		job.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalIngestionJob(job)); err != nil {
			return err
		}

		// Per-user index, newest first
		idxKey := makeJobUserKey(job.UserID, job.CreatedAt.UnixMicro(), job.Id)
		if err := tx.Set(idxKey, []byte(job.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetJob retrieves a job by ID.
func (r *JobStore) GetJob(ctx context.Context, jobID string) (*core.IngestionJob, error) {
	var job *core.IngestionJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeJobKey(jobID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			job, unmarshalErr = storage.UnmarshalIngestionJob(val)
			return unmarshalErr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJob replaces the stored job row.
func (r *JobStore) UpdateJob(ctx context.Context, job *core.IngestionJob) error {
	if err := core.ValidateJobStatus(job.Status); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(job.Id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		job.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalIngestionJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListJobs retrieves up to limit jobs for a user, newest first.
func (r *JobStore) ListJobs(ctx context.Context, userID string, limit int) ([]*core.IngestionJob, error) {
	var jobs []*core.IngestionJob

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeJobUserPrefix(userID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(jobs) >= limit {
				break
			}

			var jobID string
			err := iter.Item().Value(func(val []byte) error {
				jobID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			item, err := tx.Get(makeJobKey(jobID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					// Index entry without a row; skip
					continue
				}
				return err
			}

			var job *core.IngestionJob
			err = item.Value(func(val []byte) error {
				var unmarshalErr error
				job, unmarshalErr = storage.UnmarshalIngestionJob(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			jobs = append(jobs, job)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return jobs, nil
}
