package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{CodeNoFile, http.StatusBadRequest},
		{CodeFileTooLarge, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeFileNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeServerError, http.StatusInternalServerError},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.code); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWrapPreservesAppError(t *testing.T) {
	orig := New(CodeNotFound, "File not found")
	wrapped := Wrap(fmt.Errorf("lookup: %w", orig), CodeServerError, "Internal server error")

	if wrapped.Code != CodeNotFound {
		t.Errorf("expected original code %s to survive wrapping, got %s", CodeNotFound, wrapped.Code)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CodeServerError, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIs(t *testing.T) {
	err := New(CodeFileTooLarge, "File size exceeds limit")
	if !Is(err, CodeFileTooLarge) {
		t.Error("Is should match the error code")
	}
	if Is(err, CodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), CodeNotFound) {
		t.Error("Is should not match a plain error")
	}

	// matches through wrapping
	wrapped := fmt.Errorf("context: %w", err)
	if !Is(wrapped, CodeFileTooLarge) {
		t.Error("Is should match through wrapped errors")
	}
}

func TestFrom(t *testing.T) {
	app := From(errors.New("disk exploded"))
	if app.Code != CodeServerError {
		t.Errorf("expected SERVER_ERROR, got %s", app.Code)
	}

	orig := New(CodeNoFile, "No file uploaded")
	if From(orig) != orig {
		t.Error("From should return the original AppError")
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeNoFile, "No file uploaded")
	want := "[NO_FILE] No file uploaded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := Wrap(errors.New("boom"), CodeServerError, "Internal server error")
	if wrapped.Unwrap() == nil {
		t.Error("Unwrap should return the underlying error")
	}
}
