package biz

import (
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
)

var (
	// ErrNoFile is returned when an upload request carries no file part.
	ErrNoFile = apperrors.New(apperrors.CodeNoFile, "No file uploaded")

	// ErrInvalidType is returned when the declared content type is not in
	// the configured allow-list.
	ErrInvalidType = apperrors.New(apperrors.CodeInvalidFile, "Invalid file type")

	// ErrFileTooLarge is returned when the upload exceeds the configured
	// maximum size. The limit is enforced while streaming.
	ErrFileTooLarge = apperrors.New(apperrors.CodeFileTooLarge, "File size exceeds limit")

	// ErrFileNotFound is returned when no record exists for the identifier.
	ErrFileNotFound = apperrors.New(apperrors.CodeNotFound, "File not found")

	// ErrContentMissing is returned when the record exists but the physical
	// bytes cannot be located. A consistency fault, not a client error.
	ErrContentMissing = apperrors.New(apperrors.CodeFileNotFound, "File not found on server")

	// ErrStorageFailed covers disk or object store write failures.
	ErrStorageFailed = apperrors.New(apperrors.CodeServerError, "Failed to store file")

	// ErrPersistFailed covers record store write failures after the bytes
	// were already written; the staged bytes are rolled back.
	ErrPersistFailed = apperrors.New(apperrors.CodeServerError, "Failed to save file metadata")
)
