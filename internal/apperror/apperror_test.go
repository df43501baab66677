package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// Each case checks that errors.Is() finds the sentinel through the AppError.
func TestErrorsIs(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("payment", "PAY-1"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("username", "username is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "username", "resident1"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid credentials"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "RemoteUnavailable wraps ErrRemoteUnavailable",
			err:       RemoteUnavailable(cause),
			target:    ErrRemoteUnavailable,
			wantMatch: true,
		},
		{
			name:      "RemoteWriteFailed wraps ErrRemoteWriteFailed",
			err:       RemoteWriteFailed(cause),
			target:    ErrRemoteWriteFailed,
			wantMatch: true,
		},
		{
			name:      "wrapped twice still matches",
			err:       fmt.Errorf("coordinator: %w", ConfigurationMissing("endpoint")),
			target:    ErrConfigurationMissing,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("issue", "ISS-1"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "RemoteWriteFailed does NOT match ErrRemoteUnavailable",
			err:       RemoteWriteFailed(cause),
			target:    ErrRemoteUnavailable,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("user", "resident9"),
			wantMessage: "user not found with id resident9",
		},
		{
			name:        "Conflict message includes field and value",
			err:         Conflict("user", "flatNumber", "A101"),
			wantMessage: "user with flatNumber A101 already exists",
		},
		{
			name:        "EmptyDataset names the source",
			err:         EmptyDataset("local cache"),
			wantMessage: "local cache has no users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestIsRemoteFailure(t *testing.T) {
	if !IsRemoteFailure(RemoteUnavailable(errors.New("timeout"))) {
		t.Error("RemoteUnavailable should count as a remote failure")
	}
	if !IsRemoteFailure(ConfigurationMissing("endpoint")) {
		t.Error("ConfigurationMissing should be treated like RemoteUnavailable")
	}
	if IsRemoteFailure(NotFound("user", "x")) {
		t.Error("NotFound is not a remote failure")
	}
}

func TestRemoteErrorsKeepTheirCause(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"RemoteUnavailable", RemoteUnavailable(fmt.Errorf("GET: %w", context.DeadlineExceeded)), ErrRemoteUnavailable},
		{"RemoteWriteFailed", RemoteWriteFailed(fmt.Errorf("POST: %w", context.DeadlineExceeded)), ErrRemoteWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.kind)
			}
			if !errors.Is(tt.err, context.DeadlineExceeded) {
				t.Errorf("errors.Is(%v, context.DeadlineExceeded) = false, want true", tt.err)
			}
			var appErr *AppError
			if !errors.As(tt.err, &appErr) {
				t.Fatalf("errors.As(%v, *AppError) = false", tt.err)
			}
		})
	}
}

func TestCauseFreeErrorsMatchOnlyTheirSentinel(t *testing.T) {
	err := NotFound("user", "x")

	if errors.Is(err, context.DeadlineExceeded) {
		t.Error("NotFound should not match an unrelated error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound should still match ErrNotFound")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("flatNumber", "flat number is required for residents")

	if err.Field != "flatNumber" {
		t.Errorf("Field = %q, want %q", err.Field, "flatNumber")
	}
}
