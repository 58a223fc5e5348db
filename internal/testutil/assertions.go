package testutil

import (
	"errors"
	"testing"

	apperrors "finboard/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertAppErrorIs checks that err matches sentinel through AppError.Is and
// carries the sentinel's status and message. Sentinels that share a code are
// told apart by message.
func AssertAppErrorIs(t *testing.T, err error, sentinel *apperrors.AppError) {
	t.Helper()

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected error matching %s, got %v", sentinel.Code, err)
	}

	var appErr *apperrors.AppError
	errors.As(err, &appErr)
	if appErr.StatusCode != sentinel.StatusCode {
		t.Errorf("expected status %d, got %d", sentinel.StatusCode, appErr.StatusCode)
	}
	if appErr.Message != sentinel.Message {
		t.Errorf("expected message %q, got %q", sentinel.Message, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
