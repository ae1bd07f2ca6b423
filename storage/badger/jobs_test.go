package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/vectorsync/core"
	"github.com/poiesic/vectorsync/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobStoreForTest(t *testing.T) storage.JobRepository {
	t.Helper()
	_, jobs, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return jobs
}

func TestJobStore_CreateAndGet(t *testing.T) {
	jobs := newJobStoreForTest(t)
	ctx := context.Background()

	job := &core.IngestionJob{
		Id:     "job-1",
		UserID: "alice",
		Status: core.JobPending,
	}
	require.NoError(t, jobs.CreateJob(ctx, job))
	assert.False(t, job.CreatedAt.IsZero(), "CreateJob stamps CreatedAt")

	got, err := jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, core.JobPending, got.Status)
}

func TestJobStore_CreateDuplicate(t *testing.T) {
	jobs := newJobStoreForTest(t)
	ctx := context.Background()

	job := &core.IngestionJob{Id: "job-1", UserID: "alice", Status: core.JobPending}
	require.NoError(t, jobs.CreateJob(ctx, job))

	err := jobs.CreateJob(ctx, &core.IngestionJob{Id: "job-1", UserID: "alice", Status: core.JobPending})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestJobStore_CreateValidatesStatus(t *testing.T) {
	jobs := newJobStoreForTest(t)

	err := jobs.CreateJob(context.Background(), &core.IngestionJob{Id: "job-1", UserID: "alice"})
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}

func TestJobStore_GetMissing(t *testing.T) {
	jobs := newJobStoreForTest(t)

	_, err := jobs.GetJob(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobStore_Update(t *testing.T) {
	jobs := newJobStoreForTest(t)
	ctx := context.Background()

	job := &core.IngestionJob{Id: "job-1", UserID: "alice", Status: core.JobPending}
	require.NoError(t, jobs.CreateJob(ctx, job))

	job.Status = core.JobRunning
	job.Counters = core.JobCounters{Found: 3, Processed: 1}
	job.Log = append(job.Log, core.LogEntry{At: time.Now().UTC(), Message: "page 1 done"})
	require.NoError(t, jobs.UpdateJob(ctx, job))

	got, err := jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobRunning, got.Status)
	assert.Equal(t, 3, got.Counters.Found)
	require.Len(t, got.Log, 1)
	assert.Equal(t, "page 1 done", got.Log[0].Message)
}

func TestJobStore_UpdateMissing(t *testing.T) {
	jobs := newJobStoreForTest(t)

	err := jobs.UpdateJob(context.Background(), &core.IngestionJob{
		Id:     "no-such-job",
		UserID: "alice",
		Status: core.JobRunning,
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobStore_ListJobsNewestFirst(t *testing.T) {
	jobs := newJobStoreForTest(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"job-old", "job-mid", "job-new"} {
		require.NoError(t, jobs.CreateJob(ctx, &core.IngestionJob{
			Id:        id,
			UserID:    "alice",
			Status:    core.JobPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, jobs.CreateJob(ctx, &core.IngestionJob{
		Id:     "job-bob",
		UserID: "bob",
		Status: core.JobPending,
	}))

	listed, err := jobs.ListJobs(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "job-new", listed[0].Id)
	assert.Equal(t, "job-mid", listed[1].Id)
	assert.Equal(t, "job-old", listed[2].Id)

	t.Run("limit", func(t *testing.T) {
		listed, err := jobs.ListJobs(ctx, "alice", 2)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "job-new", listed[0].Id)
	})

	t.Run("unknown user", func(t *testing.T) {
		listed, err := jobs.ListJobs(ctx, "carol", 0)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}
