package family

import (
	"errors"

	"github.com/camden-git/familytreebackend/permissions"
)

var (
	ErrNotFound         = errors.New("person not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateCode    = errors.New("person code already exists")
	ErrPermissionDenied = permissions.ErrPermissionDenied
	ErrValidation       = errors.New("validation failed")
)

// ValidationError carries the field errors of a rejected input. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
