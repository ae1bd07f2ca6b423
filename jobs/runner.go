package jobs

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/ingest"
	"github.com/poiesic/vectorsync/storage"
)

// RunFunc executes one ingestion run for a user, reporting through the
// given reporter. The orchestrator's Run method satisfies this signature.
type RunFunc func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error

// Runner schedules ingestion runs on a background worker pool. Runs for
// different users execute concurrently; a second run for the same user is
// rejected with ErrUserBusy while the first is in flight. Run-level
// transient failures are retried with backoff before the job is failed.
type Runner struct {
	repo        storage.JobRepository
	pool        *ants.Pool
	maxAttempts int
	baseDelay   time.Duration
	flushEvery  int
	logger      *slog.Logger

	mu       sync.Mutex
	active   map[string]bool     // userID -> run in flight
	trackers map[string]*Tracker // jobID -> tracker, for cancel/status
	released bool
	wg       sync.WaitGroup
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithWorkers sets the worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(size int) RunnerOption {
	return func(r *Runner) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithRunRetry sets how many times a run that fails with a transient error
// is attempted, and the base backoff delay between attempts.
func WithRunRetry(maxAttempts int, baseDelay time.Duration) RunnerOption {
	return func(r *Runner) error {
		if maxAttempts <= 0 {
			return ingest.ErrInvalidMaxAttempts
		}
		r.maxAttempts = maxAttempts
		r.baseDelay = baseDelay
		return nil
	}
}

// WithProgressFlushInterval sets the tracker's page flush interval for jobs
// created by this runner.
func WithProgressFlushInterval(pages int) RunnerOption {
	return func(r *Runner) error {
		if pages > 0 {
			r.flushEvery = pages
		}
		return nil
	}
}

// WithRunnerLogger sets a custom logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "runner")
		return nil
	}
}

// NewRunner creates a background runner persisting jobs to repo.
func NewRunner(repo storage.JobRepository, opts ...RunnerOption) (*Runner, error) {
	if repo == nil {
		return nil, ErrJobRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		repo:        repo,
		pool:        pool,
		maxAttempts: 2,
		baseDelay:   time.Second,
		flushEvery:  DefaultFlushInterval,
		logger:      slog.Default().With("component", "runner"),
		active:      make(map[string]bool),
		trackers:    make(map[string]*Tracker),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.pool.Release()
			return nil, err
		}
	}
	return r, nil
}

// Submit creates a pending job for userID and schedules run on the worker
// pool. Returns the job ID immediately; progress is observed via Status.
// Returns ErrUserBusy if a run for the user is already in flight.
func (r *Runner) Submit(ctx context.Context, userID string, run RunFunc) (string, error) {
	if userID == "" {
		return "", core.ErrEmptyUserID
	}

	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return "", ErrRunnerClosed
	}
	if r.active[userID] {
		r.mu.Unlock()
		return "", ErrUserBusy
	}
	r.active[userID] = true
	r.mu.Unlock()

	job := &core.IngestionJob{
		Id:     uuid.NewString(),
		UserID: userID,
		Status: core.JobPending,
	}
	if err := r.repo.CreateJob(ctx, job); err != nil {
		r.releaseUser(userID)
		return "", err
	}

	tracker, err := NewTracker(r.repo, job, WithFlushInterval(r.flushEvery), WithTrackerLogger(r.logger))
	if err != nil {
		r.releaseUser(userID)
		return "", err
	}

	r.mu.Lock()
	r.trackers[job.Id] = tracker
	r.mu.Unlock()

	r.wg.Add(1)
	submitErr := r.pool.Submit(func() {
		defer r.wg.Done()
		defer r.releaseUser(userID)
		r.execute(tracker, run)
	})
	if submitErr != nil {
		r.wg.Done()
		r.releaseUser(userID)
		r.dropTracker(job.Id)
		return "", submitErr
	}

	return job.Id, nil
}

// execute drives one job to a terminal status. The run context is detached
// from the submitter; cancellation flows through the tracker's flag.
func (r *Runner) execute(tracker *Tracker, run RunFunc) {
	ctx := context.Background()
	jobID := tracker.JobID()
	userID := tracker.UserID()

	if err := tracker.Start(ctx); err != nil {
		r.logger.Error("starting job", "job", jobID, "err", err)
		return
	}

	runErr := r.runWithRetry(ctx, userID, tracker, run)

	status, summary := DeriveStatus(tracker.Snapshot().Counters, runErr)
	if err := tracker.Finish(ctx, status, summary); err != nil {
		r.logger.Error("finishing job", "job", jobID, "err", err)
	}
}

// runWithRetry drives run to completion, retrying the whole pass when it
// fails with a transient run-level error. Every attempt begins at the
// tracker's attempt boundary, so the job's counters describe the final
// attempt only. Cancelled runs are never retried.
func (r *Runner) runWithRetry(ctx context.Context, userID string, tracker *Tracker, run RunFunc) error {
	var lastErr error
	for attempt := 1; ; attempt++ {
		tracker.BeginAttempt()
		lastErr = run(ctx, userID, tracker)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ingest.ErrRunCancelled) {
			return lastErr
		}

		delay, retry := ingest.RetryDecide(attempt, ingest.ClassifyError(lastErr), r.maxAttempts, r.baseDelay)
		if !retry {
			return lastErr
		}
		r.logger.Warn("run failed, retrying",
			"user", userID, "attempt", attempt, "delay", delay, "err", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// RunInline executes a run synchronously in the caller's goroutine, under
// the same per-user lock as background runs, and returns the finished job.
func (r *Runner) RunInline(ctx context.Context, userID string, run RunFunc) (*core.IngestionJob, error) {
	if userID == "" {
		return nil, core.ErrEmptyUserID
	}

	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return nil, ErrRunnerClosed
	}
	if r.active[userID] {
		r.mu.Unlock()
		return nil, ErrUserBusy
	}
	r.active[userID] = true
	r.mu.Unlock()
	defer r.releaseUser(userID)

	job := &core.IngestionJob{
		Id:     uuid.NewString(),
		UserID: userID,
		Status: core.JobPending,
	}
	if err := r.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	tracker, err := NewTracker(r.repo, job, WithFlushInterval(r.flushEvery), WithTrackerLogger(r.logger))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.trackers[job.Id] = tracker
	r.mu.Unlock()

	if err := tracker.Start(ctx); err != nil {
		return nil, err
	}

	runErr := r.runWithRetry(ctx, userID, tracker, run)

	status, summary := DeriveStatus(tracker.Snapshot().Counters, runErr)
	if err := tracker.Finish(ctx, status, summary); err != nil {
		return nil, err
	}
	return tracker.Snapshot(), nil
}

// Cancel raises the cancellation flag of an in-flight job.
// Returns ErrJobNotFound for unknown jobs and ErrJobTerminal for jobs that
// already finished.
func (r *Runner) Cancel(ctx context.Context, jobID string) error {
	r.mu.Lock()
	tracker, ok := r.trackers[jobID]
	r.mu.Unlock()

	if !ok {
		job, err := r.repo.GetJob(ctx, jobID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrJobNotFound
			}
			return err
		}
		if job.Status.Terminal() {
			return ErrJobTerminal
		}
		return ErrJobNotFound
	}

	if tracker.Snapshot().Status.Terminal() {
		return ErrJobTerminal
	}
	tracker.Cancel()
	return nil
}

// Status returns the current job state: live buffered state for in-flight
// jobs, persisted state otherwise.
func (r *Runner) Status(ctx context.Context, jobID string) (*core.IngestionJob, error) {
	r.mu.Lock()
	tracker, ok := r.trackers[jobID]
	r.mu.Unlock()

	if ok {
		return tracker.Snapshot(), nil
	}

	job, err := r.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// Wait blocks until every submitted run has reached a terminal status.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Release waits for in-flight runs and shuts down the worker pool.
// The runner must not be used afterwards.
func (r *Runner) Release() {
	r.mu.Lock()
	r.released = true
	r.mu.Unlock()

	r.wg.Wait()
	r.pool.Release()
}

func (r *Runner) releaseUser(userID string) {
	r.mu.Lock()
	delete(r.active, userID)
	r.mu.Unlock()
}

func (r *Runner) dropTracker(jobID string) {
	r.mu.Lock()
	delete(r.trackers, jobID)
	r.mu.Unlock()
}

// DeriveStatus maps a run's final counters and error to the job's terminal
// status: no errors means succeeded, a mix of failures and progress means
// partial, and a run where every found document failed (or a run-level
// fatal error) means failed. Cancellation ends as partial.
func DeriveStatus(c core.JobCounters, runErr error) (core.JobStatus, string) {
	if runErr != nil {
		if errors.Is(runErr, ingest.ErrRunCancelled) {
			return core.JobPartial, "cancelled"
		}
		return core.JobFailed, runErr.Error()
	}

	if c.Errors == 0 {
		return core.JobSucceeded, ""
	}
	if c.Processed == 0 && c.Skipped == 0 {
		return core.JobFailed, "all documents failed"
	}
	return core.JobPartial, ""
}
