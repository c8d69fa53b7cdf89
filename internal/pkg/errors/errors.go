package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable error codes exposed by the API.
const (
	CodeNoFile        = "NO_FILE"
	CodeFileTooLarge  = "FILE_TOO_LARGE"
	CodeUploadError   = "UPLOAD_ERROR"
	CodeInvalidFile   = "INVALID_FILE"
	CodeNotFound      = "NOT_FOUND"
	CodeFileNotFound  = "FILE_NOT_FOUND" // metadata exists, bytes missing
	CodeInvalidParams = "INVALID_PARAMS"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeConflict      = "CONFLICT"
	CodeStreamError   = "STREAM_ERROR"
	CodeServerError   = "SERVER_ERROR"
)

// statusMap maps error codes to HTTP status codes. FILE_NOT_FOUND is a
// server-side consistency fault but is surfaced as 404 because the caller
// cannot act on the distinction.
var statusMap = map[string]int{
	CodeNoFile:        http.StatusBadRequest,
	CodeFileTooLarge:  http.StatusBadRequest,
	CodeUploadError:   http.StatusBadRequest,
	CodeInvalidFile:   http.StatusBadRequest,
	CodeNotFound:      http.StatusNotFound,
	CodeFileNotFound:  http.StatusNotFound,
	CodeInvalidParams: http.StatusBadRequest,
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeForbidden:     http.StatusForbidden,
	CodeConflict:      http.StatusConflict,
	CodeStreamError:   http.StatusInternalServerError,
	CodeServerError:   http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for a given error code
func HTTPStatus(code string) int {
	if s, ok := statusMap[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// AppError represents a structured application error
type AppError struct {
	Code    string // stable machine-readable code
	Message string // human-readable message
	Err     error  // underlying error (if any)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an error code. If err already carries an
// AppError it is returned unchanged so the original code survives.
func Wrap(err error, code, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{Code: code, Message: message, Err: err}
}

// Is checks if err is an AppError with the given code
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// From extracts the AppError from err, or wraps it as SERVER_ERROR
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: CodeServerError, Message: "Internal server error", Err: err}
}
