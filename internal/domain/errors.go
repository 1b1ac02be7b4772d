package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")
	ErrConflict        = errors.New("conflict with current state")
	ErrValidation      = errors.New("validation failed")
)

// NotFoundError names the missing resource while still matching
// errors.Is(err, ErrNotFound).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError is a business precondition failure (no stock, already
// returned, guarded delete). Matches errors.Is(err, ErrConflict).
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ForbiddenError carries the reason a role or ownership check failed.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// ValidationError collects per-field messages for a 422 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Shared instances for conflicts the repositories detect themselves
// through guarded updates.
var (
	ErrOutOfStock      = &ConflictError{Reason: "book is not available for borrowing"}
	ErrAlreadyReturned = &ConflictError{Reason: "this book has already been returned"}
)

type authError struct {
	reason string
}

func (e *authError) Error() string { return e.reason }

func (e *authError) Is(target error) bool { return target == ErrUnauthenticated }

// ErrInvalidCredentials responds like a missing token without revealing
// which half of the pair was wrong.
var ErrInvalidCredentials = &authError{reason: "invalid email or password"}
