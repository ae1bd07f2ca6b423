package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/vectorsync/ai"
	"github.com/poiesic/vectorsync/core"
)

const (
	// DefaultTokenLimit is the default cumulative token bound per batch.
	DefaultTokenLimit = 8000
	// DefaultCountLimit is the default chunk count bound per batch.
	DefaultCountLimit = 48
	// DefaultMaxRetries bounds embedding attempts per batch.
	DefaultMaxRetries = 3
	// DefaultRetryBaseDelay is the initial backoff delay for retries.
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// FlushFunc receives the chunks of a successfully embedded batch together
// with their vectors, in enqueue order. Returning an error fails the batch.
type FlushFunc func(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error

// EmbeddingBatcher accumulates chunks across one or more documents into
// token/count-bounded batches and invokes the embedding provider once per
// flush. Chunks are embedded in enqueue order; batch boundaries group
// chunks, never reorder them.
type EmbeddingBatcher struct {
	embedder       ai.Embedder
	onFlush        FlushFunc
	tokenLimit     int
	countLimit     int
	maxRetries     int
	retryBaseDelay time.Duration

	pending       []*core.Chunk
	pendingTokens int
	logger        *slog.Logger
}

// BatcherOption configures an EmbeddingBatcher.
type BatcherOption func(*EmbeddingBatcher) error

// WithTokenLimit sets the cumulative token bound per batch.
func WithTokenLimit(n int) BatcherOption {
	return func(b *EmbeddingBatcher) error {
		if n <= 0 {
			return fmt.Errorf("token limit must be positive, got %d", n)
		}
		b.tokenLimit = n
		return nil
	}
}

// WithCountLimit sets the chunk count bound per batch.
func WithCountLimit(n int) BatcherOption {
	return func(b *EmbeddingBatcher) error {
		if n <= 0 {
			return fmt.Errorf("count limit must be positive, got %d", n)
		}
		b.countLimit = n
		return nil
	}
}

// WithBatchRetry sets the retry bound and base backoff delay for the
// embedding call of each flush.
func WithBatchRetry(maxRetries int, baseDelay time.Duration) BatcherOption {
	return func(b *EmbeddingBatcher) error {
		if maxRetries <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxRetries = maxRetries
		b.retryBaseDelay = baseDelay
		return nil
	}
}

// NewEmbeddingBatcher creates a batcher. onFlush is called once per
// successful provider call with the embedded chunks and their vectors.
func NewEmbeddingBatcher(embedder ai.Embedder, onFlush FlushFunc, opts ...BatcherOption) (*EmbeddingBatcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if onFlush == nil {
		return nil, fmt.Errorf("flush callback required")
	}

	b := &EmbeddingBatcher{
		embedder:       embedder,
		onFlush:        onFlush,
		tokenLimit:     DefaultTokenLimit,
		countLimit:     DefaultCountLimit,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         slog.Default().With("component", "embedding-batcher"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// PendingCount returns the number of enqueued, not-yet-flushed chunks.
func (b *EmbeddingBatcher) PendingCount() int {
	return len(b.pending)
}

// PendingTokens returns the cumulative token estimate of the pending batch.
func (b *EmbeddingBatcher) PendingTokens() int {
	return b.pendingTokens
}

// Enqueue adds a chunk to the pending batch. If adding it would push the
// batch over either limit, the existing batch is flushed first and the chunk
// starts a new one. A chunk whose own token estimate exceeds the token limit
// is rejected with ErrChunkTooLarge; it must be re-chunked upstream.
func (b *EmbeddingBatcher) Enqueue(ctx context.Context, chunk *core.Chunk) error {
	if chunk.TokenEstimate > b.tokenLimit {
		return NewPipelineError(KindPermanent,
			fmt.Errorf("%w: chunk %d has %d tokens, limit %d",
				ErrChunkTooLarge, chunk.Id, chunk.TokenEstimate, b.tokenLimit))
	}

	if len(b.pending) > 0 &&
		(b.pendingTokens+chunk.TokenEstimate > b.tokenLimit ||
			len(b.pending)+1 > b.countLimit) {
		if err := b.Flush(ctx); err != nil {
			// The failed batch is gone; the current chunk was not part
			// of it and still joins the next batch.
			b.pending = append(b.pending, chunk)
			b.pendingTokens += chunk.TokenEstimate
			return err
		}
	}

	b.pending = append(b.pending, chunk)
	b.pendingTokens += chunk.TokenEstimate
	return nil
}

// Flush embeds the pending batch with one provider call (retried with
// backoff on transient failures) and hands the results to the flush
// callback. A no-op on an empty batch. If the call fails after retries, the
// whole batch fails: none of its chunks are marked embedded and a BatchError
// naming every affected document is returned.
func (b *EmbeddingBatcher) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}

	batch := b.pending
	tokens := b.pendingTokens
	b.pending = nil
	b.pendingTokens = 0

	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	b.logger.Debug("flushing embedding batch", "chunks", len(batch), "tokens", tokens)

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = b.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, b.maxRetries, b.retryBaseDelay)
	if err != nil {
		b.logger.Error("embedding batch failed", "chunks", len(batch), "err", err)
		return &BatchError{SourceIDs: batchSourceIDs(batch), Err: err}
	}

	if len(vectors) != len(batch) {
		err := fmt.Errorf("embedding result mismatch. expected %d, received %d", len(batch), len(vectors))
		b.logger.Error("embedding batch failed", "err", err)
		return &BatchError{SourceIDs: batchSourceIDs(batch), Err: err}
	}

	if err := b.onFlush(ctx, batch, vectors); err != nil {
		return &BatchError{SourceIDs: batchSourceIDs(batch), Err: err}
	}
	return nil
}

// DropSource removes any pending chunks belonging to sourceID. Used when a
// document is abandoned after an earlier batch containing its chunks failed,
// so stragglers don't leak into the next batch.
func (b *EmbeddingBatcher) DropSource(sourceID string) {
	kept := b.pending[:0]
	tokens := 0
	for _, chunk := range b.pending {
		if chunk.SourceID == sourceID {
			continue
		}
		kept = append(kept, chunk)
		tokens += chunk.TokenEstimate
	}
	b.pending = kept
	b.pendingTokens = tokens
}

// batchSourceIDs returns the distinct source IDs of a batch, in first-seen order.
func batchSourceIDs(batch []*core.Chunk) []string {
	seen := make(map[string]bool, len(batch))
	var ids []string
	for _, chunk := range batch {
		if !seen[chunk.SourceID] {
			seen[chunk.SourceID] = true
			ids = append(ids, chunk.SourceID)
		}
	}
	return ids
}
