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

	"github.com/poiesic/vectorsync/ai"
	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
)

// ProgressReporter receives progress from a run. The job tracker implements
// it; tests substitute lighter fakes. All methods are invoked synchronously
// from the run's own goroutine.
type ProgressReporter interface {
	// Add merges delta into the job's counters.
	Add(delta core.JobCounters)

	// Logf appends a timestamped message to the job's log.
	Logf(format string, args ...any)

	// PageDone signals that a source page finished; the reporter may flush
	// buffered state to durable storage.
	PageDone(ctx context.Context) error

	// Cancelled reports whether the run was cancelled out-of-band. Checked
	// between documents.
	Cancelled() bool
}

// Orchestrator drives one full ingestion run over a paged source, sequencing
// normalize, change detection, chunking, batched embedding, and persistence
// per document, and reporting progress after each page.
type Orchestrator struct {
	source    Source
	parser    Parser
	embedder  ai.Embedder
	detector  *ChangeDetector
	chunker   *Chunker
	persister *Persister
	vectors   storage.VectorRepository

	tokenLimit     int
	countLimit     int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator) error

// WithChunker replaces the default chunker.
func WithChunker(chunker *Chunker) OrchestratorOption {
	return func(o *Orchestrator) error {
		if chunker == nil {
			return fmt.Errorf("chunker must not be nil")
		}
		o.chunker = chunker
		return nil
	}
}

// WithBatchLimits sets the token and count bounds for embedding batches.
func WithBatchLimits(tokenLimit, countLimit int) OrchestratorOption {
	return func(o *Orchestrator) error {
		if tokenLimit <= 0 || countLimit <= 0 {
			return fmt.Errorf("batch limits must be positive")
		}
		o.tokenLimit = tokenLimit
		o.countLimit = countLimit
		return nil
	}
}

// WithRetryPolicy sets the attempt bound and base backoff delay for
// transient provider errors.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) OrchestratorOption {
	return func(o *Orchestrator) error {
		if maxRetries <= 0 {
			return ErrInvalidMaxAttempts
		}
		o.maxRetries = maxRetries
		o.retryBaseDelay = baseDelay
		return nil
	}
}

// WithOrchestratorLogger sets a custom logger.
// Default is slog.Default().
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "orchestrator")
		return nil
	}
}

// NewOrchestrator creates an orchestrator over the given collaborators.
// force re-ingests every document regardless of stored content hashes.
func NewOrchestrator(
	source Source,
	parser Parser,
	embedder ai.Embedder,
	index storage.ContentIndexRepository,
	vectors storage.VectorRepository,
	force bool,
	opts ...OrchestratorOption,
) (*Orchestrator, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if parser == nil {
		return nil, fmt.Errorf("parser required")
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}

	detector, err := NewChangeDetector(index, force)
	if err != nil {
		return nil, err
	}
	persister, err := NewPersister(vectors, index)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		source:         source,
		parser:         parser,
		embedder:       embedder,
		detector:       detector,
		chunker:        NewChunker(),
		persister:      persister,
		vectors:        vectors,
		tokenLimit:     DefaultTokenLimit,
		countLimit:     DefaultCountLimit,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// docState tracks one document across the asynchronous boundary between
// enqueueing its chunks and the batch flushes that upsert them.
type docState struct {
	doc       *core.Document
	hash      string
	chunkIDs  []core.ID
	remaining int  // chunks enqueued but not yet upserted
	enqueued  bool // all chunks have been enqueued
	failed    bool
	done      bool
}

// run carries the mutable state of one orchestrated run.
type run struct {
	o          *Orchestrator
	userID     string
	reporter   ProgressReporter
	batcher    *EmbeddingBatcher
	generation uint64
	states     map[string]*docState
	order      []string
}

// Run executes one ingestion run for userID. Document-level errors are
// isolated, logged, and counted; they never abort the run. The returned
// error is non-nil only for run-level failures (the job becomes failed) or
// cancellation. Final job status is derived by the caller from the counters.
func (o *Orchestrator) Run(ctx context.Context, userID string, reporter ProgressReporter) error {
	if userID == "" {
		return core.ErrEmptyUserID
	}

	generation, err := o.vectors.NextGeneration(ctx)
	if err != nil {
		return fmt.Errorf("reserving generation: %w", err)
	}

	r := &run{
		o:          o,
		userID:     userID,
		reporter:   reporter,
		generation: generation,
		states:     make(map[string]*docState),
	}

	batcher, err := NewEmbeddingBatcher(o.embedder, r.onBatchFlushed,
		WithTokenLimit(o.tokenLimit),
		WithCountLimit(o.countLimit),
		WithBatchRetry(o.maxRetries, o.retryBaseDelay))
	if err != nil {
		return err
	}
	r.batcher = batcher

	o.logger.Info("starting ingestion run", "user", userID, "source", o.source.Name(), "generation", generation)
	reporter.Logf("run started against %s", o.source.Name())

	cursor := ""
	for {
		page, err := o.source.ListPage(ctx, userID, cursor)
		if err != nil {
			reporter.Logf("listing source page failed: %v", err)
			return fmt.Errorf("listing source page: %w", err)
		}

		reporter.Add(core.JobCounters{Found: len(page.Documents)})

		for _, doc := range page.Documents {
			if reporter.Cancelled() {
				o.logger.Info("run cancelled", "user", userID)
				reporter.Logf("run cancelled")
				return ErrRunCancelled
			}
			if err := r.processDocument(ctx, doc); err != nil {
				return err
			}
		}

		for _, sourceID := range page.Deleted {
			if reporter.Cancelled() {
				o.logger.Info("run cancelled", "user", userID)
				reporter.Logf("run cancelled")
				return ErrRunCancelled
			}
			if err := r.deleteDocument(ctx, sourceID); err != nil {
				return err
			}
		}

		// Page boundary: flush what's pending and finalize every document
		// whose chunks are all upserted, then checkpoint progress.
		if err := r.flushAndFinalize(ctx); err != nil {
			return err
		}
		if err := reporter.PageDone(ctx); err != nil {
			o.logger.Warn("progress checkpoint failed", "err", err)
		}

		if page.Done {
			break
		}
		cursor = page.NextCursor
	}

	o.logger.Info("ingestion run complete", "user", userID)
	return nil
}

// onBatchFlushed is the batcher's flush callback: it upserts the embedded
// chunks as pending under the run's generation and updates per-document
// accounting.
func (r *run) onBatchFlushed(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error {
	if err := r.o.persister.UpsertPending(ctx, r.generation, chunks, vectors); err != nil {
		return err
	}
	for _, chunk := range chunks {
		if state, ok := r.states[chunk.SourceID]; ok {
			state.remaining--
		}
	}
	return nil
}

// processDocument runs one document through the pipeline. Errors scoped to
// the document are recorded and swallowed; only run-fatal errors propagate.
func (r *run) processDocument(ctx context.Context, doc *core.Document) error {
	doc.UserID = r.userID
	log := r.o.logger.With("source", doc.SourceID)

	var raw []byte
	err := RetryWithBackoff(ctx, func() error {
		var fetchErr error
		raw, fetchErr = r.o.source.Fetch(ctx, doc)
		return fetchErr
	}, r.o.maxRetries, r.o.retryBaseDelay)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("fetch failed", "err", err)
		r.reporter.Logf("%s: fetch failed: %v", doc.SourceID, err)
		r.reporter.Add(core.JobCounters{Errors: 1})
		return nil
	}

	text, err := r.o.parser.Parse(doc, raw)
	if err != nil {
		if errors.Is(err, ErrUnsupportedContent) {
			// Nothing to embed; existing chunks stay untouched.
			log.Debug("unsupported content, skipping embedding")
			r.reporter.Logf("%s: unsupported content type %s", doc.SourceID, doc.MimeType)
			r.reporter.Add(core.JobCounters{Processed: 1})
			return nil
		}
		log.Warn("parse failed", "err", err)
		r.reporter.Logf("%s: parse failed: %v", doc.SourceID, err)
		r.reporter.Add(core.JobCounters{Errors: 1})
		return nil
	}

	normalized, hash := NormalizeAndHash(text)

	decision, _, err := r.o.detector.Decide(ctx, r.userID, doc.SourceID, hash, doc.Version)
	if err != nil {
		// The metadata store answering lookups is a run-level dependency.
		return err
	}
	if decision == DecisionSkip {
		log.Debug("content unchanged, skipping")
		r.reporter.Add(core.JobCounters{Skipped: 1})
		return nil
	}

	chunks := r.o.chunker.Chunk(doc, normalized)
	if len(chunks) == 0 {
		log.Debug("no chunkable text")
		r.reporter.Logf("%s: no text content", doc.SourceID)
		r.reporter.Add(core.JobCounters{Processed: 1})
		return nil
	}

	state := &docState{
		doc:       doc,
		hash:      hash,
		chunkIDs:  make([]core.ID, len(chunks)),
		remaining: len(chunks),
	}
	for i, chunk := range chunks {
		state.chunkIDs[i] = chunk.Id
	}
	r.states[doc.SourceID] = state
	r.order = append(r.order, doc.SourceID)

	for _, chunk := range chunks {
		if state.failed {
			break
		}
		if err := r.enqueue(ctx, state, chunk); err != nil {
			return err
		}
	}

	if !state.failed {
		state.enqueued = true
	}
	return r.finalizeReady(ctx)
}

// deleteDocument removes the stored chunks and index entry of a source the
// provider reports as deleted. Failures are document-level.
func (r *run) deleteDocument(ctx context.Context, sourceID string) error {
	if err := r.o.persister.DeleteDocument(ctx, r.userID, sourceID); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.o.logger.Warn("deleting document", "source", sourceID, "err", err)
		r.reporter.Logf("%s: delete failed: %v", sourceID, err)
		r.reporter.Add(core.JobCounters{Errors: 1})
		return nil
	}
	r.reporter.Logf("%s: removed deleted document", sourceID)
	r.reporter.Add(core.JobCounters{Deleted: 1})
	return nil
}

// enqueue adds one chunk to the batcher and absorbs batch-scoped failures.
func (r *run) enqueue(ctx context.Context, state *docState, chunk *core.Chunk) error {
	err := r.batcher.Enqueue(ctx, chunk)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		r.markBatchFailed(batchErr)
		if state.failed {
			r.batcher.DropSource(state.doc.SourceID)
		}
		return nil
	}

	// Oversized chunk or other permanent enqueue rejection: the whole
	// document fails, since a partial chunk set must never finalize.
	r.o.logger.Warn("chunk rejected", "source", state.doc.SourceID, "err", err)
	r.reporter.Logf("%s: %v", state.doc.SourceID, err)
	r.reporter.Add(core.JobCounters{Errors: 1})
	state.failed = true
	r.batcher.DropSource(state.doc.SourceID)
	return nil
}

// markBatchFailed records a document-level error for every document whose
// chunks were in a failed batch.
func (r *run) markBatchFailed(batchErr *BatchError) {
	for _, sourceID := range batchErr.SourceIDs {
		state, ok := r.states[sourceID]
		if !ok || state.failed || state.done {
			continue
		}
		state.failed = true
		r.reporter.Logf("%s: embedding failed: %v", sourceID, batchErr.Err)
		r.reporter.Add(core.JobCounters{Errors: 1})
	}
}

// flushAndFinalize drains the pending batch and finalizes every ready
// document. Called at page boundaries.
func (r *run) flushAndFinalize(ctx context.Context) error {
	if err := r.batcher.Flush(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var batchErr *BatchError
		if errors.As(err, &batchErr) {
			r.markBatchFailed(batchErr)
		} else {
			return err
		}
	}
	return r.finalizeReady(ctx)
}

// finalizeReady promotes every document whose chunks are all upserted.
// Consistency violations are fatal to the run; other finalize errors are
// document-level.
func (r *run) finalizeReady(ctx context.Context) error {
	for _, sourceID := range r.order {
		state := r.states[sourceID]
		if !state.enqueued || state.remaining > 0 || state.failed || state.done {
			continue
		}

		err := r.o.persister.FinalizeDocument(ctx, state.doc, state.hash, r.generation, state.chunkIDs)
		if err != nil {
			if ClassifyError(err) == KindConsistency {
				r.reporter.Logf("%s: consistency violation: %v", sourceID, err)
				return err
			}
			r.o.logger.Warn("finalize failed", "source", sourceID, "err", err)
			r.reporter.Logf("%s: finalize failed: %v", sourceID, err)
			r.reporter.Add(core.JobCounters{Errors: 1})
			state.failed = true
			continue
		}

		state.done = true
		r.reporter.Add(core.JobCounters{Processed: 1, Embedded: len(state.chunkIDs)})
	}
	return nil
}
