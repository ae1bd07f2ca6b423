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


package vectorsync

import (
	"context"
	"log/slog"

	"github.com/poiesic/vectorsync/ai"
	"github.com/poiesic/vectorsync/ai/openai"
	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/ingest"
	"github.com/poiesic/vectorsync/jobs"
	"github.com/poiesic/vectorsync/search"
	"github.com/poiesic/vectorsync/storage"
	"github.com/poiesic/vectorsync/storage/badger"
)

// Database wires the storage, embedding, ingestion, and job layers into one
// handle. It is the entry point for embedding applications and the CLI.
type Database struct {
	backend    *badger.Backend
	indexRepo  storage.ContentIndexRepository
	jobRepo    storage.JobRepository
	vectorRepo storage.VectorRepository
	provider   ai.AIProvider
	runner     *jobs.Runner
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	workers  int
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithAIProvider supplies a pre-built provider instead of constructing the
// OpenAI-compatible one. Used by tests to inject mocks.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithWorkers sets the background runner's worker pool size.
func WithWorkers(n int) DatabaseOption {
	return func(o *databaseOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// NewDatabase opens the storage backend at filePath and wires the full
// stack. Pass an empty filePath for an in-memory database.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, filePath == "")
	if err != nil {
		return nil, err
	}

	indexRepo := badger.NewContentIndex(backend)
	jobRepo := badger.NewJobStore(backend)

	vectorRepo, err := badger.NewVectorStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			vectorRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	var runnerOpts []jobs.RunnerOption
	if options.workers > 0 {
		runnerOpts = append(runnerOpts, jobs.WithWorkers(options.workers))
	}
	runner, err := jobs.NewRunner(jobRepo, runnerOpts...)
	if err != nil {
		provider.Close()
		vectorRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:    backend,
		indexRepo:  indexRepo,
		jobRepo:    jobRepo,
		vectorRepo: vectorRepo,
		provider:   provider,
		runner:     runner,
		logger:     slog.Default(),
	}, nil
}

// Close shuts down the runner, provider, repositories, and backend.
func (db *Database) Close() error {
	db.runner.Release()

	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.vectorRepo.Close(); err != nil {
		db.logger.Error("error closing vector repository", "err", err)
		return err
	}
	if err := db.indexRepo.Close(); err != nil {
		db.logger.Error("error closing content index repository", "err", err)
		return err
	}
	if err := db.jobRepo.Close(); err != nil {
		db.logger.Error("error closing job repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ContentIndexRepository exposes the content index for embedding applications.
func (db *Database) ContentIndexRepository() storage.ContentIndexRepository {
	return db.indexRepo
}

// JobRepository exposes the persisted job rows.
func (db *Database) JobRepository() storage.JobRepository {
	return db.jobRepo
}

// VectorRepository exposes the vector store.
func (db *Database) VectorRepository() storage.VectorRepository {
	return db.vectorRepo
}

// NewOrchestrator builds an ingestion orchestrator over the database's
// repositories for the given source and parser. force re-ingests every
// document regardless of stored content hashes.
func (db *Database) NewOrchestrator(source ingest.Source, parser ingest.Parser, force bool, opts ...ingest.OrchestratorOption) (*ingest.Orchestrator, error) {
	return ingest.NewOrchestrator(source, parser, db.provider.Embedder(), db.indexRepo, db.vectorRepo, force, opts...)
}

// StartRun schedules a background ingestion run for userID over the source
// and returns the job ID immediately. A second run for the same user while
// one is in flight returns jobs.ErrUserBusy.
func (db *Database) StartRun(ctx context.Context, userID string, source ingest.Source, parser ingest.Parser, force bool) (string, error) {
	orch, err := db.NewOrchestrator(source, parser, force)
	if err != nil {
		return "", err
	}
	return db.runner.Submit(ctx, userID, orch.Run)
}

// RunSync executes an ingestion run inline and waits for its terminal
// status, returning the finished job snapshot.
func (db *Database) RunSync(ctx context.Context, userID string, source ingest.Source, parser ingest.Parser, force bool) (*core.IngestionJob, error) {
	orch, err := db.NewOrchestrator(source, parser, force)
	if err != nil {
		return nil, err
	}
	return db.runner.RunInline(ctx, userID, orch.Run)
}

// Wait blocks until every background run submitted so far has finished.
func (db *Database) Wait() {
	db.runner.Wait()
}

// JobStatus returns the current snapshot of a job: live state for in-flight
// jobs, persisted state otherwise.
func (db *Database) JobStatus(ctx context.Context, jobID string) (*core.IngestionJob, error) {
	return db.runner.Status(ctx, jobID)
}

// Jobs lists up to limit recent jobs for a user, newest first.
func (db *Database) Jobs(ctx context.Context, userID string, limit int) ([]*core.IngestionJob, error) {
	return db.jobRepo.ListJobs(ctx, userID, limit)
}

// CancelRun raises the cancellation flag of an in-flight run. The
// orchestrator halts between documents and the job finishes as partial.
func (db *Database) CancelRun(ctx context.Context, jobID string) error {
	return db.runner.Cancel(ctx, jobID)
}

// NewSearcher builds a searcher over the database's vector store.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.vectorRepo, db.provider, opts...)
}

// Search embeds the query and returns the most similar finalized chunks in
// the user's namespace.
func (db *Database) Search(ctx context.Context, userID, query string, maxHits int) ([]*core.SearchResult, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return searcher.FindSimilar(ctx, userID, query, maxHits)
}
