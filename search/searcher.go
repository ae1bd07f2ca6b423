package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/vectorsync/ai"
	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
)

// DefaultMinSimilarity is the similarity floor for query matches.
const DefaultMinSimilarity = 0.60

// Searcher provides semantic retrieval over a user's ingested chunks.
type Searcher struct {
	vectors       storage.VectorRepository
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity floor for results.
// Default is DefaultMinSimilarity.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(vectors storage.VectorRepository, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		vectors:       vectors,
		embedder:      provider.Embedder(),
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar embeds the query and returns up to maxHits finalized chunks
// from the user's namespace ranked by similarity. Chunks from in-flight
// ingestion passes are never returned.
func (s *Searcher) FindSimilar(ctx context.Context, userID, query string, maxHits int) ([]*core.SearchResult, error) {
	if userID == "" {
		return nil, core.ErrEmptyUserID
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	matches, err := s.vectors.FindSimilar(ctx, userID, embedding, s.minSimilarity, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	return matches, nil
}
