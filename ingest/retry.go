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
	"log/slog"
	"time"
)

// RetryDecide is the pure retry policy: given the attempt number that just
// failed (1-based), the error kind, the bound on attempts, and the base
// delay, it returns how long to wait before the next attempt and whether to
// retry at all. Only transient errors are retried; the delay doubles per
// attempt (baseDelay * 2^(attempt-1)).
func RetryDecide(attempt int, kind ErrorKind, maxAttempts int, baseDelay time.Duration) (time.Duration, bool) {
	if kind != KindTransient {
		return 0, false
	}
	if attempt >= maxAttempts {
		return 0, false
	}

	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay, true
}

// RetryWithBackoff retries an operation with exponential backoff.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: base delay between retries (doubles on each retry)
// Permanent errors stop the loop immediately; only errors classified as
// transient are retried. Returns the error from the last attempt.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil // Success
		}

		delay, retry := RetryDecide(attempt, ClassifyError(lastErr), maxAttempts, baseDelay)
		if !retry {
			break
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "error", lastErr)

		// Sleep with context awareness
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Continue to next attempt
		}
	}

	return lastErr
}
