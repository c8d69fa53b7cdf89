package biz

import (
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
)

var (
	// ErrTitleRequired rejects issues without a title.
	ErrTitleRequired = apperrors.New(apperrors.CodeInvalidParams, "Magazine title is required")

	// ErrMagazineNotFound is returned when no issue exists for the identifier.
	ErrMagazineNotFound = apperrors.New(apperrors.CodeNotFound, "Magazine not found")

	// ErrPersistFailed covers record store failures after the PDF was staged;
	// the staged file is rolled back.
	ErrPersistFailed = apperrors.New(apperrors.CodeServerError, "Failed to save magazine")
)
