package jobs

import "errors"

var (
	// ErrJobRepositoryRequired is returned when a job repository is not provided.
	ErrJobRepositoryRequired = errors.New("job repository required")

	// ErrUserBusy is returned when a run is requested for a user who already
	// has a run in flight. Concurrent runs for the same user are never
	// interleaved.
	ErrUserBusy = errors.New("an ingestion run is already in progress for this user")

	// ErrJobNotFound is returned when the referenced job is unknown.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobTerminal is returned when attempting to cancel a job that has
	// already reached a terminal status.
	ErrJobTerminal = errors.New("job already in a terminal state")

	// ErrRunnerClosed is returned when submitting to a released runner.
	ErrRunnerClosed = errors.New("runner has been released")
)
