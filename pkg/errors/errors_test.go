package errors

import (
	"errors"
	"net/http"
	"strings"
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

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
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
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"NotFound", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"Validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"InvalidInput", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"Unauthorized", Unauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{"Forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"Conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"SlotUnavailable", SlotUnavailable("occupied"), CodeSlotUnavailable, http.StatusConflict},
		{"InvalidState", InvalidState("not pending"), CodeInvalidState, http.StatusConflict},
		{"Internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{"Timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"Unavailable", Unavailable("Mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "12345")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Details["id"] != "12345" {
		t.Errorf("expected id '12345', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Booking" {
		t.Errorf("expected resource 'Booking', got %v", err.Details["resource"])
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)
	err = err.WithDetails(map[string]any{"field": "rating"})

	if err.Details["field"] != "rating" {
		t.Errorf("expected field 'rating', got %v", err.Details["field"])
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	regularErr := errors.New("regular error")

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if IsAppError(regularErr) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	regularErr := errors.New("regular error")

	result := AsAppError(appErr)
	if result != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	result = AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(SlotUnavailable("occupied"), CodeSlotUnavailable) {
		t.Errorf("HasCode() should match the error's code")
	}
	if HasCode(SlotUnavailable("occupied"), CodeConflict) {
		t.Errorf("HasCode() should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("HasCode() should be false for non-AppError")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := NotFoundWithID("Booking", "12345")
	data := err.ToJSON()

	if len(data) == 0 {
		t.Errorf("ToJSON() should return non-empty JSON")
	}

	jsonStr := string(data)
	if !strings.Contains(jsonStr, "NOT_FOUND") {
		t.Errorf("ToJSON() should contain error code")
	}
	if !strings.Contains(jsonStr, "not found") {
		t.Errorf("ToJSON() should contain error message")
	}
}
