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

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - UserID and SourceID must be present
//   - SequenceIndex must not be negative
//
// NOT validated:
//   - TokenEstimate (0 is valid until the chunker computes it)
//   - Id (derived from SourceID and SequenceIndex)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyUserID)
	}

	if chunk.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySourceID)
	}

	if chunk.SequenceIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeSequence)
	}

	return nil
}

// ValidateContentIndexEntry validates a ContentIndexEntry according to
// domain rules.
func ValidateContentIndexEntry(entry *ContentIndexEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyUserID)
	}

	if entry.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptySourceID)
	}

	// Some providers surface only revision markers, so either change
	// signal satisfies the entry.
	if entry.ContentHash == "" && entry.Version == "" {
		return fmt.Errorf("%w: content hash or version required", ErrInvalidEntry)
	}

	return nil
}

// ValidateJobStatus validates that a JobStatus has a valid value.
func ValidateJobStatus(status JobStatus) error {
	switch status {
	case JobPending, JobRunning, JobSucceeded, JobPartial, JobFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}

// ValidateJobTransition validates a job status transition.
//
// Allowed transitions:
//   - pending -> running
//   - running -> succeeded | partial | failed
//
// Terminal states admit no further transitions; a retry requires a new job.
func ValidateJobTransition(from, to JobStatus) error {
	if err := ValidateJobStatus(from); err != nil {
		return err
	}
	if err := ValidateJobStatus(to); err != nil {
		return err
	}

	allowed := false
	switch from {
	case JobPending:
		allowed = to == JobRunning
	case JobRunning:
		allowed = to.Terminal()
	}

	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
