package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical content
// produces identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkIDFor generates the deterministic ID for a chunk of a document.
// The ID depends only on the source ID and the chunk's sequence index, so
// re-ingesting unchanged content yields the same chunk IDs.
func ChunkIDFor(sourceID string, sequenceIndex int) ID {
	return IDFromContent(sourceID + ":" + strconv.Itoa(sequenceIndex))
}

// Document is the local metadata mirror of one unit of source content.
// The content itself is owned by the source; only the attributes needed for
// change detection and chunk metadata are kept here.
type Document struct {
	SourceID     string
	UserID       string
	Name         string
	MimeType     string
	Version      string    // Source-provided revision marker, may be empty
	ModifiedTime time.Time // Source-reported modification time, may be zero
}

// Chunk is a bounded span of normalized document text, the unit of
// embedding and retrieval.
type Chunk struct {
	Id            ID
	SourceID      string
	UserID        string
	SequenceIndex int
	Text          string
	TokenEstimate int
	Title         string
	Locator       string
	SourceType    string
}

// StoredChunk is a chunk as persisted in the vector store, together with
// its embedding vector and finalization state.
//
// Generation identifies the ingestion pass that wrote the chunk. Chunks with
// Finalized=false belong to an in-flight pass and are invisible to queries
// until FinalizeDocument promotes them.
type StoredChunk struct {
	Chunk      Chunk
	Vector     []float32
	Generation uint64
	Finalized  bool
}

// ContentIndexEntry records the last successfully ingested state of a
// document for one (user, source) pair. It is written only by
// FinalizeDocument, never mid-run.
//
// Invariant: between runs, every ID in ChunkIDs exists finalized in the
// vector store, and no finalized chunk for the source exists outside it.
type ContentIndexEntry struct {
	UserID         string
	SourceID       string
	ContentHash    string
	Version        string
	ChunkIDs       []ID
	Generation     uint64
	LastIngestedAt time.Time
	UpdatedAt      time.Time
}

// HasChunk reports whether the entry lists the given chunk ID as live.
func (e *ContentIndexEntry) HasChunk(id ID) bool {
	for _, cid := range e.ChunkIDs {
		if cid == id {
			return true
		}
	}
	return false
}

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus int

const (
	// JobPending indicates the job has been created but not started.
	JobPending JobStatus = iota + 1
	// JobRunning indicates the orchestrator is executing the run.
	JobRunning
	// JobSucceeded indicates the run completed with zero document errors.
	JobSucceeded
	// JobPartial indicates the run completed with some document errors.
	JobPartial
	// JobFailed indicates the run aborted or every document failed.
	JobFailed
)

// String returns the lowercase name of the status.
func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobPartial:
		return "partial"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is final. Terminal jobs never change
// again; a retry requires a new job.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobPartial || s == JobFailed
}

// JobCounters holds the progress counters of an ingestion job.
// Counters are add-only within a run.
type JobCounters struct {
	Found     int
	Processed int
	Embedded  int
	Skipped   int
	Deleted   int
	Errors    int
}

// Add merges delta into the counters. Negative fields are ignored so that
// counters remain non-decreasing.
func (c *JobCounters) Add(delta JobCounters) {
	c.Found += max(delta.Found, 0)
	c.Processed += max(delta.Processed, 0)
	c.Embedded += max(delta.Embedded, 0)
	c.Skipped += max(delta.Skipped, 0)
	c.Deleted += max(delta.Deleted, 0)
	c.Errors += max(delta.Errors, 0)
}

// LogEntry is one timestamped message in a job's log.
type LogEntry struct {
	At      time.Time
	Message string
}

// IngestionJob is one tracked invocation of the ingestion orchestrator for
// one user.
type IngestionJob struct {
	Id           string
	UserID       string
	Status       JobStatus
	Counters     JobCounters
	Log          []LogEntry
	ErrorSummary string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StartedAt    time.Time
	FinishedAt   time.Time
}

// SearchResult is a retrieval hit with its relevance score.
type SearchResult struct {
	Chunk *StoredChunk
	Score float32
}
