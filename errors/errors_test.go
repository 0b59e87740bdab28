package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNotFound(t *testing.T) {
	err := NotFound("recording", "abc-123")

	if err.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NotFound must not be retryable")
	}
	if err.Details["id"] != "abc-123" {
		t.Errorf("expected id detail, got %v", err.Details["id"])
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := DatabaseError(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal(cause)

	got := err.Error()
	want := fmt.Sprintf("%s: %s (cause: boom)", ErrCodeInternal, err.Message)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRetryableCodes(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeTimeout, true},
		{ErrCodeStorageError, true},
		{ErrCodeTranscriptionFailed, true},
		{ErrCodeDatabaseError, true},
		{ErrCodeNotFound, false},
		{ErrCodeInvalidInput, false},
		{ErrCodeInternal, false},
	}
	for _, tc := range cases {
		if got := IsRetryableCode(tc.code); got != tc.want {
			t.Errorf("IsRetryableCode(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("batch", "")) {
		t.Error("expected IsNotFound true for NotFound error")
	}
	if IsNotFound(Validation("bad input")) {
		t.Error("expected IsNotFound false for validation error")
	}
	if IsNotFound(stderrors.New("plain")) {
		t.Error("expected IsNotFound false for plain error")
	}
	wrapped := fmt.Errorf("loading: %w", NotFound("project", "p1"))
	if !IsNotFound(wrapped) {
		t.Error("expected IsNotFound true for wrapped NotFound")
	}
}

func TestToResponse(t *testing.T) {
	err := Validation("duration too long").WithDetail("field", "duration_seconds")
	resp := err.ToResponse()

	if resp.Error.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "duration_seconds" {
		t.Errorf("expected field detail, got %v", resp.Error.Details)
	}
}
