package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, IDFromContent("hello"), IDFromContent("hello"))
	})

	t.Run("distinct content distinct ids", func(t *testing.T) {
		assert.NotEqual(t, IDFromContent("hello"), IDFromContent("world"))
	})

	t.Run("empty content is valid", func(t *testing.T) {
		assert.Equal(t, IDFromContent(""), IDFromContent(""))
	})
}

func TestChunkIDFor(t *testing.T) {
	t.Run("stable across runs", func(t *testing.T) {
		assert.Equal(t, ChunkIDFor("docs/readme.md", 0), ChunkIDFor("docs/readme.md", 0))
	})

	t.Run("sequence index matters", func(t *testing.T) {
		assert.NotEqual(t, ChunkIDFor("docs/readme.md", 0), ChunkIDFor("docs/readme.md", 1))
	})

	t.Run("source matters", func(t *testing.T) {
		assert.NotEqual(t, ChunkIDFor("a.md", 0), ChunkIDFor("b.md", 0))
	})

	t.Run("separator prevents ambiguity", func(t *testing.T) {
		// "doc:1" index 2 must not collide with "doc" index 12.
		assert.NotEqual(t, ChunkIDFor("doc:1", 2), ChunkIDFor("doc", 12))
	})
}

func TestJobStatus(t *testing.T) {
	t.Run("string names", func(t *testing.T) {
		assert.Equal(t, "pending", JobPending.String())
		assert.Equal(t, "running", JobRunning.String())
		assert.Equal(t, "succeeded", JobSucceeded.String())
		assert.Equal(t, "partial", JobPartial.String())
		assert.Equal(t, "failed", JobFailed.String())
		assert.Equal(t, "unknown", JobStatus(0).String())
	})

	t.Run("terminal", func(t *testing.T) {
		assert.False(t, JobPending.Terminal())
		assert.False(t, JobRunning.Terminal())
		assert.True(t, JobSucceeded.Terminal())
		assert.True(t, JobPartial.Terminal())
		assert.True(t, JobFailed.Terminal())
	})
}

func TestJobCountersAdd(t *testing.T) {
	t.Run("merges fields", func(t *testing.T) {
		c := JobCounters{Found: 1, Processed: 1}
		c.Add(JobCounters{Found: 2, Embedded: 5, Deleted: 1, Errors: 1})
		assert.Equal(t, JobCounters{Found: 3, Processed: 1, Embedded: 5, Deleted: 1, Errors: 1}, c)
	})

	t.Run("negative deltas are ignored", func(t *testing.T) {
		c := JobCounters{Found: 4, Skipped: 2}
		c.Add(JobCounters{Found: -3, Skipped: -1, Processed: -9})
		assert.Equal(t, JobCounters{Found: 4, Skipped: 2}, c)
	})
}

func TestContentIndexEntryHasChunk(t *testing.T) {
	entry := &ContentIndexEntry{ChunkIDs: []ID{1, 2, 3}}
	assert.True(t, entry.HasChunk(2))
	assert.False(t, entry.HasChunk(9))

	empty := &ContentIndexEntry{}
	assert.False(t, empty.HasChunk(1))
}
