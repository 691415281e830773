// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Service errors. Handlers map these to HTTP status codes.
var (
	ErrBadRequest           = errors.New("bad request")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrIdentityVerification = errors.New("identity verification failed")
)

// ValidationError reports invalid input fields. It matches ErrBadRequest.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is(err, ErrBadRequest) match.
func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

// Invalid returns a ValidationError with a message and no field details.
func Invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// InvalidField returns a ValidationError for a single field.
func InvalidField(field, message string) *ValidationError {
	return &ValidationError{
		Message: "validation failed",
		Fields:  map[string]string{field: message},
	}
}

// FromValidation converts an ozzo-validation result into a ValidationError.
// Internal rule errors are returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for name, fe := range fieldErrs {
			if fe != nil {
				fields[name] = fe.Error()
			}
		}
		return &ValidationError{Message: "validation failed", Fields: fields}
	}

	return &ValidationError{Message: err.Error()}
}
