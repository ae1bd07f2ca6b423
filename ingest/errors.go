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


package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceRequired is returned when a content source is not provided.
	ErrSourceRequired = errors.New("content source required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrContentIndexRequired is returned when a content index repository is not provided.
	ErrContentIndexRequired = errors.New("content index repository required")

	// ErrVectorRepositoryRequired is returned when a vector repository is not provided.
	ErrVectorRepositoryRequired = errors.New("vector repository required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrChunkTooLarge is returned when a single chunk's token estimate exceeds
	// the batch token limit. The chunk must be re-chunked upstream.
	ErrChunkTooLarge = errors.New("chunk token estimate exceeds batch token limit")

	// ErrUnsupportedContent is returned by parsers for content they cannot
	// turn into text. The document is recorded but nothing is embedded.
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrRunCancelled is returned when a run halts because its cancellation
	// flag was raised.
	ErrRunCancelled = errors.New("ingestion run cancelled")
)

// ErrorKind classifies pipeline errors by how they should be handled.
type ErrorKind int

const (
	// KindTransient covers rate limits, timeouts, and connectivity failures.
	// Retried with backoff up to a bounded attempt count.
	KindTransient ErrorKind = iota + 1
	// KindPermanent covers invalid input and oversized chunks.
	// Recorded as a document error, never retried.
	KindPermanent
	// KindSourceFetch covers unreachable or deleted source documents.
	// The document is recorded and skipped.
	KindSourceFetch
	// KindConsistency covers finalize invariant violations.
	// Fatal to the run, surfaced as a job failure.
	KindConsistency
)

// String returns the lowercase name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindSourceFetch:
		return "source-fetch"
	case KindConsistency:
		return "consistency"
	default:
		return "unknown"
	}
}

// PipelineError wraps an underlying error with its handling classification.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err with the given kind.
func NewPipelineError(kind ErrorKind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

// transientMarkers are substrings of provider error messages that indicate
// a retryable condition. Providers rarely expose typed errors, so text
// matching on the well-known phrases is the practical classifier.
var transientMarkers = []string{
	"rate limit",
	"rate_limit",
	"429",
	"500",
	"502",
	"503",
	"504",
	"timeout",
	"timed out",
	"deadline exceeded",
	"connection refused",
	"connection reset",
	"temporarily unavailable",
	"service unavailable",
	"too many requests",
}

// ClassifyError determines the handling kind of err. An explicit
// PipelineError wins; otherwise context timeouts and known transient
// provider messages classify as transient and everything else as permanent.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return 0
	}

	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	if errors.Is(err, ErrChunkTooLarge) || errors.Is(err, ErrUnsupportedContent) {
		return KindPermanent
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return KindTransient
		}
	}

	return KindPermanent
}

// BatchError is returned when the embedding call for a flushed batch fails
// after retries. It carries the source IDs of every document whose chunks
// were in the failed batch so each can be recorded as a document error.
type BatchError struct {
	SourceIDs []string
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("embedding batch failed for %d document(s): %v", len(e.SourceIDs), e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
