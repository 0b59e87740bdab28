package transcription

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestProviderError_Retryable(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusNotFound, true},
	}
	for _, tc := range cases {
		pe := &ProviderError{StatusCode: tc.status}
		if got := pe.Retryable(); got != tc.retryable {
			t.Errorf("status %d: Retryable() = %v, want %v", tc.status, got, tc.retryable)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	wrapped := fmt.Errorf("attempt failed: %w", &ProviderError{StatusCode: http.StatusUnauthorized})
	if IsRetryable(wrapped) {
		t.Error("wrapped auth error should not be retryable")
	}
	if IsRetryable(context.Canceled) {
		t.Error("cancellation should not be retryable")
	}
	if !IsRetryable(context.DeadlineExceeded) {
		t.Error("attempt timeout should be retryable")
	}
	if !IsRetryable(errors.New("connection reset")) {
		t.Error("network errors should be retryable")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got := NormalizeLanguage("ja"); got != "ja" {
		t.Errorf("expected ja, got %s", got)
	}
	if got := NormalizeLanguage(""); got != DefaultLanguage {
		t.Errorf("expected default for empty, got %s", got)
	}
	if got := NormalizeLanguage("xx"); got != DefaultLanguage {
		t.Errorf("expected default for unknown, got %s", got)
	}
}
