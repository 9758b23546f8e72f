package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestConflictTaxonomy(t *testing.T) {
	unavailable := SlotUnavailable("range claimed")
	contended := SlotContended("admission in flight")

	// Both map to 409 but only contention invites a retry.
	if unavailable.HTTPStatus != http.StatusConflict {
		t.Errorf("expected 409 for SLOT_UNAVAILABLE, got %d", unavailable.HTTPStatus)
	}
	if contended.HTTPStatus != http.StatusConflict {
		t.Errorf("expected 409 for SLOT_CONTENDED, got %d", contended.HTTPStatus)
	}
	if unavailable.Retryable {
		t.Error("SLOT_UNAVAILABLE must not be marked retryable")
	}
	if !contended.Retryable {
		t.Error("SLOT_CONTENDED must be marked retryable")
	}
}

func TestIsCode(t *testing.T) {
	err := SlotContended("busy")

	if !IsCode(err, CodeSlotContended) {
		t.Error("expected IsCode to match the error's code")
	}
	if IsCode(err, CodeSlotUnavailable) {
		t.Error("expected IsCode to reject a different code")
	}
	if IsCode(nil, CodeSlotContended) {
		t.Error("expected IsCode to reject nil")
	}
	if IsCode(errors.New("plain"), CodeSlotContended) {
		t.Error("expected IsCode to reject non-AppErrors")
	}

	wrapped := fmt.Errorf("admission failed: %w", err)
	if !IsCode(wrapped, CodeSlotContended) {
		t.Error("expected IsCode to see through wrapping")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFoundWithID("Provider", "abc123")
	if got := AsAppError(appErr); got != appErr {
		t.Error("expected AsAppError to return the original AppError")
	}

	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("expected plain errors to fold into %s, got %s", CodeInternal, got.Code)
	}
	if !errors.Is(got, plain) {
		t.Error("expected the original error to stay in the chain")
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Reservation", "64f000000000000000000001")

	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
	if err.Details["id"] != "64f000000000000000000001" {
		t.Errorf("expected ID in details, got %v", err.Details)
	}
}
