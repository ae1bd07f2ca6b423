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


package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validChunk() *Chunk {
	return &Chunk{
		Id:            ChunkIDFor("docs/readme.md", 0),
		SourceID:      "docs/readme.md",
		UserID:        "alice",
		SequenceIndex: 0,
		Text:          "some chunk text",
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Chunk)
		wantErr error
	}{
		{
			name:   "valid chunk",
			mutate: func(c *Chunk) {},
		},
		{
			name:    "empty text",
			mutate:  func(c *Chunk) { c.Text = "" },
			wantErr: ErrEmptyText,
		},
		{
			name:    "empty user",
			mutate:  func(c *Chunk) { c.UserID = "" },
			wantErr: ErrEmptyUserID,
		},
		{
			name:    "empty source",
			mutate:  func(c *Chunk) { c.SourceID = "" },
			wantErr: ErrEmptySourceID,
		},
		{
			name:    "negative sequence",
			mutate:  func(c *Chunk) { c.SequenceIndex = -1 },
			wantErr: ErrNegativeSequence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := validChunk()
			tt.mutate(chunk)
			err := ValidateChunk(chunk)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidChunk)
		})
	}

	t.Run("nil chunk", func(t *testing.T) {
		assert.ErrorIs(t, ValidateChunk(nil), ErrInvalidChunk)
	})

	t.Run("zero token estimate is valid", func(t *testing.T) {
		chunk := validChunk()
		chunk.TokenEstimate = 0
		assert.NoError(t, ValidateChunk(chunk))
	})
}

func TestValidateContentIndexEntry(t *testing.T) {
	t.Run("hash only", func(t *testing.T) {
		assert.NoError(t, ValidateContentIndexEntry(&ContentIndexEntry{
			UserID:      "alice",
			SourceID:    "doc-1",
			ContentHash: "abc123",
		}))
	})

	t.Run("version only", func(t *testing.T) {
		assert.NoError(t, ValidateContentIndexEntry(&ContentIndexEntry{
			UserID:   "alice",
			SourceID: "doc-1",
			Version:  "42",
		}))
	})

	t.Run("neither change signal", func(t *testing.T) {
		err := ValidateContentIndexEntry(&ContentIndexEntry{
			UserID:   "alice",
			SourceID: "doc-1",
		})
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("missing user", func(t *testing.T) {
		err := ValidateContentIndexEntry(&ContentIndexEntry{
			SourceID:    "doc-1",
			ContentHash: "abc123",
		})
		assert.ErrorIs(t, err, ErrEmptyUserID)
	})

	t.Run("missing source", func(t *testing.T) {
		err := ValidateContentIndexEntry(&ContentIndexEntry{
			UserID:      "alice",
			ContentHash: "abc123",
		})
		assert.ErrorIs(t, err, ErrEmptySourceID)
	})

	t.Run("nil entry", func(t *testing.T) {
		assert.ErrorIs(t, ValidateContentIndexEntry(nil), ErrInvalidEntry)
	})
}

func TestValidateJobStatus(t *testing.T) {
	for _, status := range []JobStatus{JobPending, JobRunning, JobSucceeded, JobPartial, JobFailed} {
		assert.NoError(t, ValidateJobStatus(status))
	}
	assert.ErrorIs(t, ValidateJobStatus(JobStatus(0)), ErrInvalidStatus)
	assert.ErrorIs(t, ValidateJobStatus(JobStatus(99)), ErrInvalidStatus)
}

func TestValidateJobTransition(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobPending, JobRunning, true},
		{JobRunning, JobSucceeded, true},
		{JobRunning, JobPartial, true},
		{JobRunning, JobFailed, true},
		{JobPending, JobSucceeded, false},
		{JobPending, JobFailed, false},
		{JobRunning, JobPending, false},
		{JobSucceeded, JobRunning, false},
		{JobFailed, JobRunning, false},
		{JobPartial, JobSucceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"_to_"+tt.to.String(), func(t *testing.T) {
			err := ValidateJobTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}
