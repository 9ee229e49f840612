// Package common defines shared constants and sentinel errors used across
// the warbler core. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors are raised before anything reaches storage.
	ErrorValidation      = errors.New("validation error")
	ErrorInvalidPassword = fmt.Errorf("%w: invalid password", ErrorValidation)
	ErrorSelfFollow      = fmt.Errorf("%w: user cannot follow itself", ErrorValidation)
	ErrorInvalidMessage  = fmt.Errorf("%w: message must be 1 to 140 characters", ErrorValidation)

	// Constraint violations reported by storage at commit time.
	ErrorIntegrity           = errors.New("integrity error")
	ErrorUniqueViolation     = fmt.Errorf("%w: uniqueness violation", ErrorIntegrity)
	ErrorForeignKeyViolation = fmt.Errorf("%w: foreign key violation", ErrorIntegrity)
	ErrorNotNullViolation    = fmt.Errorf("%w: not null violation", ErrorIntegrity)
	ErrorCheckViolation      = fmt.Errorf("%w: check violation", ErrorIntegrity)

	// ErrorReference marks an operation that referenced a missing user or message.
	ErrorReference = errors.New("reference error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
