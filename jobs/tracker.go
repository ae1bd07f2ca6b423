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


package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
)

// DefaultFlushInterval is the number of source pages between durable
// progress writes.
const DefaultFlushInterval = 1

// Tracker owns the lifecycle of one persisted ingestion job. Counter and log
// updates accumulate in memory and are flushed to the job repository at most
// once per configured page interval, plus unconditionally when the job
// reaches a terminal status, so a crash loses at most one interval's worth
// of progress and never a terminal status.
//
// Tracker implements ingest.ProgressReporter.
type Tracker struct {
	repo          storage.JobRepository
	flushInterval int
	logger        *slog.Logger

	mu              sync.Mutex
	job             *core.IngestionJob
	pagesSinceFlush int
	attempts        int
	dirty           bool

	cancelled atomic.Bool
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithFlushInterval sets how many pages may pass between durable progress
// writes. Default is DefaultFlushInterval.
func WithFlushInterval(pages int) TrackerOption {
	return func(t *Tracker) {
		if pages > 0 {
			t.flushInterval = pages
		}
	}
}

// WithTrackerLogger sets a custom logger.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger.With("component", "job-tracker")
		}
	}
}

// NewTracker creates a tracker over an already-persisted pending job.
func NewTracker(repo storage.JobRepository, job *core.IngestionJob, opts ...TrackerOption) (*Tracker, error) {
	if repo == nil {
		return nil, ErrJobRepositoryRequired
	}
	if job == nil {
		return nil, core.ErrInvalidJob
	}

	t := &Tracker{
		repo:          repo,
		job:           job,
		flushInterval: DefaultFlushInterval,
		logger:        slog.Default().With("component", "job-tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// JobID returns the tracked job's ID.
func (t *Tracker) JobID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job.Id
}

// UserID returns the tracked job's user.
func (t *Tracker) UserID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job.UserID
}

// Start transitions the job from pending to running and flushes immediately.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := core.ValidateJobTransition(t.job.Status, core.JobRunning); err != nil {
		return err
	}
	t.job.Status = core.JobRunning
	t.job.StartedAt = time.Now().UTC()
	t.dirty = true
	return t.flushLocked(ctx)
}

// BeginAttempt marks the start of a run attempt. The first attempt is a
// no-op. A retry restarts the whole pass, so the counters are reset to zero
// and the retry is noted in the job log; the finished job then reflects only
// the final attempt instead of summing every attempt.
func (t *Tracker) BeginAttempt() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status.Terminal() {
		return
	}
	t.attempts++
	if t.attempts == 1 {
		return
	}
	t.job.Counters = core.JobCounters{}
	t.job.Log = append(t.job.Log, core.LogEntry{
		At:      time.Now().UTC(),
		Message: fmt.Sprintf("retrying run (attempt %d)", t.attempts),
	})
	t.dirty = true
}

// Add merges delta into the job's counters. Counters only increase within a
// run attempt; negative fields in delta are ignored.
func (t *Tracker) Add(delta core.JobCounters) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status.Terminal() {
		return
	}
	t.job.Counters.Add(delta)
	t.dirty = true
}

// Logf appends a timestamped message to the job's log buffer.
func (t *Tracker) Logf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status.Terminal() {
		return
	}
	t.job.Log = append(t.job.Log, core.LogEntry{
		At:      time.Now().UTC(),
		Message: fmt.Sprintf(format, args...),
	})
	t.dirty = true
}

// PageDone counts a completed source page and flushes buffered state when
// the configured interval has elapsed.
func (t *Tracker) PageDone(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pagesSinceFlush++
	if t.pagesSinceFlush < t.flushInterval {
		return nil
	}
	return t.flushLocked(ctx)
}

// Cancel raises the run's cancellation flag. The orchestrator observes it
// between documents and halts gracefully.
func (t *Tracker) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (t *Tracker) Cancelled() bool {
	return t.cancelled.Load()
}

// Finish transitions the job to a terminal status and flushes
// unconditionally. The terminal write never stays buffered.
func (t *Tracker) Finish(ctx context.Context, status core.JobStatus, errorSummary string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := core.ValidateJobTransition(t.job.Status, status); err != nil {
		return err
	}
	t.job.Status = status
	t.job.ErrorSummary = errorSummary
	t.job.FinishedAt = time.Now().UTC()
	t.dirty = true

	t.logger.Info("job finished",
		"job", t.job.Id,
		"status", status,
		"found", t.job.Counters.Found,
		"processed", t.job.Counters.Processed,
		"embedded", t.job.Counters.Embedded,
		"skipped", t.job.Counters.Skipped,
		"deleted", t.job.Counters.Deleted,
		"errors", t.job.Counters.Errors)

	return t.flushLocked(ctx)
}

// Snapshot returns a copy of the current job state, including buffered
// changes not yet written to storage.
func (t *Tracker) Snapshot() *core.IngestionJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := *t.job
	snap.Log = make([]core.LogEntry, len(t.job.Log))
	copy(snap.Log, t.job.Log)
	return &snap
}

// flushLocked writes the buffered job state durably. Must be called with
// the mutex held.
func (t *Tracker) flushLocked(ctx context.Context) error {
	if !t.dirty {
		t.pagesSinceFlush = 0
		return nil
	}

	snap := *t.job
	snap.Log = make([]core.LogEntry, len(t.job.Log))
	copy(snap.Log, t.job.Log)

	if err := t.repo.UpdateJob(ctx, &snap); err != nil {
		return fmt.Errorf("flushing job %s: %w", t.job.Id, err)
	}
	t.job.UpdatedAt = snap.UpdatedAt
	t.dirty = false
	t.pagesSinceFlush = 0
	return nil
}
