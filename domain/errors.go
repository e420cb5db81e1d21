package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEditionNotFound  = errors.New("edition not found")
	ErrEditionArchived  = errors.New("edition is archived and can no longer be modified")
	ErrConcurrentUpdate = errors.New("edition was modified by another request, reload and retry")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrLessonLocked     = errors.New("lesson already has attendance recorded")
	ErrDuplicate        = errors.New("duplicate record")
)

// ValidationError rejects a request before anything is written.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	cause   error
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ArchivedError is the validation error returned for any mutation of an ARCHIVED edition.
func ArchivedError() *ValidationError {
	return &ValidationError{Field: "status", Message: ErrEditionArchived.Error(), cause: ErrEditionArchived}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
