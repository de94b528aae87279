package service

import (
	"errors"
	"fmt"

	"yamdb/internal/microservices/http-api/policy"
)

// Error taxonomy shared by every service. Handlers map these to status codes;
// callers add detail with fmt.Errorf("%w: ...").
var (
	ErrUnauthenticated  = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrConflict         = errors.New("conflict")
)

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// PolicyError converts a denied policy decision into the matching error, or nil.
func PolicyError(d policy.Decision) error {
	switch d {
	case policy.Allow:
		return nil
	case policy.DenyUnauthenticated:
		return ErrUnauthenticated
	default:
		return ErrPermissionDenied
	}
}
