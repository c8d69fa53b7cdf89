package biz

import (
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
)

var (
	// ErrInvalidEmail rejects registrations without a plausible address.
	ErrInvalidEmail = apperrors.New(apperrors.CodeInvalidParams, "Invalid email address")

	// ErrWeakPassword enforces the minimum password length.
	ErrWeakPassword = apperrors.New(apperrors.CodeInvalidParams, "Password must be at least 8 characters")

	// ErrEmailTaken is returned when the address already has an account.
	ErrEmailTaken = apperrors.New(apperrors.CodeConflict, "Email already registered")

	// ErrUserNotFound is returned when no account exists for the identifier.
	ErrUserNotFound = apperrors.New(apperrors.CodeNotFound, "User not found")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = apperrors.New(apperrors.CodeUnauthorized, "Invalid email or password")
)
