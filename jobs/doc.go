// Package jobs provides the ingestion job lifecycle: the Tracker state
// machine that persists job progress with throttled writes, and the Runner
// that schedules orchestrator runs on a background worker pool with a
// per-user lock and retry for transient run failures.
//
// A job moves pending -> running -> {succeeded, partial, failed}. Terminal
// states are final; retrying requires a new job.
package jobs
