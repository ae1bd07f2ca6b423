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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidEntry indicates a ContentIndexEntry failed validation.
	ErrInvalidEntry = errors.New("invalid content index entry")

	// ErrInvalidJob indicates an IngestionJob failed validation.
	ErrInvalidJob = errors.New("invalid ingestion job")

	// ErrEmptyText indicates the chunk Text field is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrEmptyUserID indicates the UserID field is empty.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrEmptySourceID indicates the SourceID field is empty.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrNegativeSequence indicates a negative chunk sequence index.
	ErrNegativeSequence = errors.New("sequence index cannot be negative")

	// ErrInvalidStatus indicates an invalid JobStatus value.
	ErrInvalidStatus = errors.New("invalid job status")

	// ErrInvalidTransition indicates a forbidden job status transition.
	ErrInvalidTransition = errors.New("invalid job status transition")
)
