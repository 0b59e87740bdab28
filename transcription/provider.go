package transcription

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Provider is the interface that transcription backends implement.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

// ProviderError is an error response from a transcription provider.
type ProviderError struct {
	// StatusCode is the HTTP status the provider returned.
	StatusCode int
	// Body is the provider's response body, truncated for logging.
	Body string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("transcription provider error (status %d): %s", e.StatusCode, e.Body)
}

// Retryable reports whether the error is worth retrying. Bad requests and
// authentication failures are terminal: the same audio and credentials would
// fail again.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode != http.StatusBadRequest && e.StatusCode != http.StatusUnauthorized
}

// IsRetryable classifies an error from a transcription attempt. Provider
// errors follow their own classification; a deadline on the attempt means the
// provider was slow, which is transient; cancellation aborts.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}
