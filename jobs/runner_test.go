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
	"errors"
	"testing"
	"time"

	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/ingest"
	"github.com/poiesic/vectorsync/storage"
	"github.com/poiesic/vectorsync/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunnerForTest(t *testing.T, opts ...RunnerOption) (*Runner, storage.JobRepository) {
	t.Helper()
	_, repo, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	runner, err := NewRunner(repo, opts...)
	require.NoError(t, err)
	t.Cleanup(runner.Release)

	return runner, repo
}

func TestRunner_SubmitRunsToCompletion(t *testing.T) {
	runner, repo := newRunnerForTest(t)
	ctx := context.Background()

	jobID, err := runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		assert.Equal(t, "alice", userID)
		reporter.Add(core.JobCounters{Found: 2, Processed: 2, Embedded: 4})
		return reporter.PageDone(ctx)
	})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	runner.Wait()

	job, err := repo.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobSucceeded, job.Status)
	assert.Equal(t, 2, job.Counters.Processed)
	assert.Equal(t, 4, job.Counters.Embedded)
	assert.False(t, job.StartedAt.IsZero())
	assert.False(t, job.FinishedAt.IsZero())
}

func TestRunner_OneRunPerUser(t *testing.T) {
	runner, _ := newRunnerForTest(t, WithWorkers(4))
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	blocking := func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		close(started)
		<-release
		return nil
	}

	_, err := runner.Submit(ctx, "alice", blocking)
	require.NoError(t, err)
	<-started

	_, err = runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrUserBusy)

	// A different user is not blocked.
	_, err = runner.Submit(ctx, "bob", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		return nil
	})
	require.NoError(t, err)

	close(release)
	runner.Wait()

	// The lock is released once the run finishes.
	_, err = runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		return nil
	})
	require.NoError(t, err)
	runner.Wait()
}

func TestRunner_TransientRunFailureIsRetried(t *testing.T) {
	runner, repo := newRunnerForTest(t, WithRunRetry(3, time.Millisecond))
	ctx := context.Background()

	attempts := 0
	jobID, err := runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		attempts++
		if attempts < 3 {
			return errors.New("503 service unavailable")
		}
		reporter.Add(core.JobCounters{Found: 1, Processed: 1})
		return nil
	})
	require.NoError(t, err)
	runner.Wait()

	assert.Equal(t, 3, attempts)
	job, err := repo.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobSucceeded, job.Status)
}

func TestRunner_RetryCountsFinalAttemptOnly(t *testing.T) {
	runner, repo := newRunnerForTest(t, WithRunRetry(3, time.Millisecond))
	ctx := context.Background()

	attempts := 0
	jobID, err := runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		attempts++
		reporter.Add(core.JobCounters{Found: 2})
		if attempts == 1 {
			reporter.Add(core.JobCounters{Errors: 1})
			return errors.New("429 too many requests")
		}
		reporter.Add(core.JobCounters{Processed: 2})
		return nil
	})
	require.NoError(t, err)
	runner.Wait()

	job, err := repo.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, core.JobSucceeded, job.Status, "a clean retry ends clean")
	assert.Equal(t, 2, job.Counters.Found, "documents counted once, not per attempt")
	assert.Equal(t, 2, job.Counters.Processed)
	assert.Equal(t, 0, job.Counters.Errors, "errors from a superseded attempt do not survive")
}

func TestRunner_RunLevelFailureFailsJob(t *testing.T) {
	runner, repo := newRunnerForTest(t, WithRunRetry(1, time.Millisecond))
	ctx := context.Background()

	jobID, err := runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		return errors.New("source listing rejected")
	})
	require.NoError(t, err)
	runner.Wait()

	job, err := repo.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, job.Status)
	assert.Contains(t, job.ErrorSummary, "source listing rejected")
}

func TestRunner_RunInline(t *testing.T) {
	runner, repo := newRunnerForTest(t)
	ctx := context.Background()

	job, err := runner.RunInline(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		reporter.Add(core.JobCounters{Found: 3, Processed: 2, Skipped: 1})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, core.JobSucceeded, job.Status)
	assert.Equal(t, 3, job.Counters.Found)

	stored, err := repo.GetJob(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.JobSucceeded, stored.Status)
}

func TestRunner_CancelInFlight(t *testing.T) {
	runner, repo := newRunnerForTest(t)
	ctx := context.Background()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	jobID, err := runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		close(started)
		<-cancelled
		if reporter.Cancelled() {
			return ingest.ErrRunCancelled
		}
		return nil
	})
	require.NoError(t, err)

	<-started
	require.NoError(t, runner.Cancel(ctx, jobID))
	close(cancelled)
	runner.Wait()

	job, err := repo.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobPartial, job.Status)
	assert.Equal(t, "cancelled", job.ErrorSummary)
}

func TestRunner_CancelErrors(t *testing.T) {
	runner, _ := newRunnerForTest(t)
	ctx := context.Background()

	t.Run("unknown job", func(t *testing.T) {
		err := runner.Cancel(ctx, "no-such-job")
		assert.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("terminal job", func(t *testing.T) {
		jobID, err := runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
			return nil
		})
		require.NoError(t, err)
		runner.Wait()

		assert.ErrorIs(t, runner.Cancel(ctx, jobID), ErrJobTerminal)
	})
}

func TestRunner_StatusReflectsLiveProgress(t *testing.T) {
	runner, _ := newRunnerForTest(t, WithProgressFlushInterval(100))
	ctx := context.Background()

	reported := make(chan struct{})
	release := make(chan struct{})
	jobID, err := runner.Submit(ctx, "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		reporter.Add(core.JobCounters{Found: 9})
		close(reported)
		<-release
		return nil
	})
	require.NoError(t, err)

	<-reported
	job, err := runner.Status(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobRunning, job.Status)
	assert.Equal(t, 9, job.Counters.Found, "status sees buffered counters before any flush")

	close(release)
	runner.Wait()

	job, err = runner.Status(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, core.JobSucceeded, job.Status)
}

func TestRunner_SubmitAfterRelease(t *testing.T) {
	_, repo, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	runner, err := NewRunner(repo)
	require.NoError(t, err)
	runner.Release()

	_, err = runner.Submit(context.Background(), "alice", func(ctx context.Context, userID string, reporter ingest.ProgressReporter) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrRunnerClosed)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name       string
		counters   core.JobCounters
		runErr     error
		wantStatus core.JobStatus
	}{
		{
			name:       "clean run succeeds",
			counters:   core.JobCounters{Found: 3, Processed: 3},
			wantStatus: core.JobSucceeded,
		},
		{
			name:       "nothing found still succeeds",
			counters:   core.JobCounters{},
			wantStatus: core.JobSucceeded,
		},
		{
			name:       "mixed outcome is partial",
			counters:   core.JobCounters{Found: 3, Processed: 2, Errors: 1},
			wantStatus: core.JobPartial,
		},
		{
			name:       "skips count as progress",
			counters:   core.JobCounters{Found: 3, Skipped: 2, Errors: 1},
			wantStatus: core.JobPartial,
		},
		{
			name:       "every document failed",
			counters:   core.JobCounters{Found: 3, Errors: 3},
			wantStatus: core.JobFailed,
		},
		{
			name:       "run-level error fails",
			counters:   core.JobCounters{Found: 3, Processed: 3},
			runErr:     errors.New("listing broke"),
			wantStatus: core.JobFailed,
		},
		{
			name:       "cancellation is partial",
			counters:   core.JobCounters{Found: 3, Processed: 1},
			runErr:     ingest.ErrRunCancelled,
			wantStatus: core.JobPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := DeriveStatus(tt.counters, tt.runErr)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
