package storage

import (
	"context"

	"github.com/poiesic/vectorsync/core"
)

// ContentIndexRepository provides operations for the per-document content
// index used by change detection. Entries are keyed by (userID, sourceID).
// Implementations must be thread-safe and support concurrent access.
type ContentIndexRepository interface {
	// GetEntry retrieves the entry for a (user, source) pair.
	// Returns ErrNotFound if no entry exists (first ingest).
	GetEntry(ctx context.Context, userID, sourceID string) (*core.ContentIndexEntry, error)

	// PutEntry creates or replaces the entry.
	// Updates the UpdatedAt timestamp automatically.
	PutEntry(ctx context.Context, entry *core.ContentIndexEntry) error

	// DeleteEntry removes the entry for a (user, source) pair.
	// Returns ErrNotFound if the entry doesn't exist.
	DeleteEntry(ctx context.Context, userID, sourceID string) error

	// ListEntries retrieves all entries for a user, ordered by source ID.
	ListEntries(ctx context.Context, userID string) ([]*core.ContentIndexEntry, error)

	// Close closes the repository and releases resources.
	Close() error
}

// JobRepository provides operations for persisted ingestion jobs.
type JobRepository interface {
	// CreateJob persists a new job. Sets CreatedAt/UpdatedAt if unset.
	// Returns ErrDuplicateKey if a job with the same ID exists.
	CreateJob(ctx context.Context, job *core.IngestionJob) error

	// GetJob retrieves a job by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, jobID string) (*core.IngestionJob, error)

	// UpdateJob replaces the stored job row.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the job doesn't exist.
	UpdateJob(ctx context.Context, job *core.IngestionJob) error

	// ListJobs retrieves up to limit jobs for a user, newest first.
	ListJobs(ctx context.Context, userID string, limit int) ([]*core.IngestionJob, error)

	// Close closes the repository and releases resources.
	Close() error
}

// VectorRepository provides operations on the per-user vector namespace.
// All mutation of the vector store funnels through this interface.
type VectorRepository interface {
	// NextGeneration reserves a generation number for an ingestion pass.
	NextGeneration(ctx context.Context) (uint64, error)

	// StageChunks writes chunk vectors and metadata into the staging area
	// for their source. Staged chunks never collide with the live chunk set
	// and are invisible to GetChunk and FindSimilar until PromoteStaged
	// moves them onto the live keys. Re-staging the same chunk replaces the
	// staged copy only.
	StageChunks(ctx context.Context, chunks ...*core.StoredChunk) error

	// PromoteStaged atomically replaces the live chunk set for a source
	// with the staged chunks named in keep: in a single transaction the
	// kept chunks become live with Finalized=true and the given generation,
	// live chunks outside the keep set are deleted, and the staging area
	// for the source is cleared. Readers see the complete old set or the
	// complete new set, never a mix.
	// Returns ErrNotFound if any keep ID was not staged.
	PromoteStaged(ctx context.Context, userID, sourceID string, generation uint64, keep []core.ID) error

	// DeleteSource removes every live and staged chunk for a source in a
	// single transaction. Deleting an unknown source is a no-op.
	DeleteSource(ctx context.Context, userID, sourceID string) error

	// GetChunk retrieves a single live chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, userID string, id core.ID) (*core.StoredChunk, error)

	// ListSourceChunkIDs retrieves the IDs of the live chunks for a source
	// in the user's namespace. When includePending is true, staged chunks
	// from in-flight ingestion passes are included as well.
	ListSourceChunkIDs(ctx context.Context, userID, sourceID string, includePending bool) ([]core.ID, error)

	// FindSimilar finds live chunks similar to the given vector within the
	// user's namespace. Returns chunks with similarity >= minSimilarity,
	// up to limit results, ordered by similarity score (highest first).
	// Staged chunks are never visible to queries.
	FindSimilar(ctx context.Context, userID string, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Close closes the repository and releases resources.
	Close() error
}
