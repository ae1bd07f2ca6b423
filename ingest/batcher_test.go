package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/vectorsync/ai/mock"
	"github.com/poiesic/vectorsync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushRecord struct {
	chunks  []*core.Chunk
	vectors [][]float32
}

func collectFlushes(sink *[]flushRecord) FlushFunc {
	return func(ctx context.Context, chunks []*core.Chunk, vectors [][]float32) error {
		*sink = append(*sink, flushRecord{chunks: chunks, vectors: vectors})
		return nil
	}
}

func makeChunk(sourceID string, seq, tokens int) *core.Chunk {
	return &core.Chunk{
		Id:            core.ChunkIDFor(sourceID, seq),
		SourceID:      sourceID,
		UserID:        "alice",
		SequenceIndex: seq,
		Text:          fmt.Sprintf("%s chunk %d", sourceID, seq),
		TokenEstimate: tokens,
	}
}

func TestEmbeddingBatcher_CountLimitBatching(t *testing.T) {
	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(mock.NewMockEmbedder(), collectFlushes(&flushes),
		WithCountLimit(48), WithTokenLimit(1_000_000))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 130; i++ {
		require.NoError(t, b.Enqueue(ctx, makeChunk("doc", i, 10)))
	}
	require.NoError(t, b.Flush(ctx))

	require.Len(t, flushes, 3, "130 chunks at limit 48 should produce exactly 3 batches")
	assert.Len(t, flushes[0].chunks, 48)
	assert.Len(t, flushes[1].chunks, 48)
	assert.Len(t, flushes[2].chunks, 34)
}

func TestEmbeddingBatcher_TokenLimitBatching(t *testing.T) {
	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(mock.NewMockEmbedder(), collectFlushes(&flushes),
		WithTokenLimit(100), WithCountLimit(1000))
	require.NoError(t, err)

	ctx := context.Background()
	// 40 + 40 fits, the third 40 forces a flush.
	for i := 0; i < 6; i++ {
		require.NoError(t, b.Enqueue(ctx, makeChunk("doc", i, 40)))
	}
	require.NoError(t, b.Flush(ctx))

	require.Len(t, flushes, 3)
	for _, flush := range flushes {
		total := 0
		for _, chunk := range flush.chunks {
			total += chunk.TokenEstimate
		}
		assert.LessOrEqual(t, total, 100)
	}
}

func TestEmbeddingBatcher_OrderingPreserved(t *testing.T) {
	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(mock.NewMockEmbedder(), collectFlushes(&flushes),
		WithCountLimit(7))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 25; i++ {
		require.NoError(t, b.Enqueue(ctx, makeChunk("doc", i, 5)))
	}
	require.NoError(t, b.Flush(ctx))

	seq := 0
	for _, flush := range flushes {
		for _, chunk := range flush.chunks {
			assert.Equal(t, seq, chunk.SequenceIndex, "batch boundaries must not reorder chunks")
			seq++
		}
	}
	assert.Equal(t, 25, seq)
}

func TestEmbeddingBatcher_EmptyFlushIsNoop(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(embedder, collectFlushes(&flushes))
	require.NoError(t, err)

	require.NoError(t, b.Flush(context.Background()))
	require.NoError(t, b.Flush(context.Background()))

	assert.Zero(t, embedder.CallCount(), "empty flush must not call the provider")
	assert.Empty(t, flushes)
}

func TestEmbeddingBatcher_OversizedChunkRejected(t *testing.T) {
	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(mock.NewMockEmbedder(), collectFlushes(&flushes),
		WithTokenLimit(100))
	require.NoError(t, err)

	err = b.Enqueue(context.Background(), makeChunk("doc", 0, 101))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChunkTooLarge)
	assert.Equal(t, KindPermanent, ClassifyError(err))
	assert.Zero(t, b.PendingCount(), "rejected chunk must not join the batch")
}

func TestEmbeddingBatcher_ProviderFailureFailsWholeBatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("boom")
	}

	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(embedder, collectFlushes(&flushes),
		WithBatchRetry(1, time.Millisecond))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Enqueue(ctx, makeChunk("doc-a", 0, 5)))
	require.NoError(t, b.Enqueue(ctx, makeChunk("doc-b", 0, 5)))

	err = b.Flush(ctx)
	require.Error(t, err)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.ElementsMatch(t, []string{"doc-a", "doc-b"}, batchErr.SourceIDs)
	assert.Empty(t, flushes, "failed batch must not reach the flush callback")
	assert.Zero(t, b.PendingCount(), "failed batch is discarded")
}

func TestEmbeddingBatcher_TransientFailureRetried(t *testing.T) {
	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("429 too many requests")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(embedder, collectFlushes(&flushes),
		WithBatchRetry(5, time.Millisecond))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Enqueue(ctx, makeChunk("doc", 0, 5)))
	require.NoError(t, b.Flush(ctx))

	assert.Equal(t, 3, calls)
	require.Len(t, flushes, 1)
	require.Len(t, flushes[0].vectors, 1)
}

func TestEmbeddingBatcher_VectorCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil // always one vector
	}

	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(embedder, collectFlushes(&flushes))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Enqueue(ctx, makeChunk("doc", 0, 5)))
	require.NoError(t, b.Enqueue(ctx, makeChunk("doc", 1, 5)))

	err = b.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestEmbeddingBatcher_DropSource(t *testing.T) {
	var flushes []flushRecord
	b, err := NewEmbeddingBatcher(mock.NewMockEmbedder(), collectFlushes(&flushes))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Enqueue(ctx, makeChunk("keep", 0, 5)))
	require.NoError(t, b.Enqueue(ctx, makeChunk("drop", 0, 7)))
	require.NoError(t, b.Enqueue(ctx, makeChunk("keep", 1, 5)))

	b.DropSource("drop")

	assert.Equal(t, 2, b.PendingCount())
	assert.Equal(t, 10, b.PendingTokens())

	require.NoError(t, b.Flush(ctx))
	require.Len(t, flushes, 1)
	for _, chunk := range flushes[0].chunks {
		assert.Equal(t, "keep", chunk.SourceID)
	}
}
