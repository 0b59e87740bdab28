// Package resilience provides the concurrency and retry primitives used by
// the transcription job core: a FIFO bounded-concurrency limiter shared by
// all provider callers, and context-aware retry with exponential backoff.
package resilience
