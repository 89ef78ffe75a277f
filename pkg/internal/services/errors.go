package services

import (
	"errors"
	"fmt"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
)

type ErrorKind string

const (
	KindValidation       = ErrorKind("ValidationError")
	KindDuplicateAddress = ErrorKind("DuplicateAddress")
	KindPermissionDenied = ErrorKind("PermissionDenied")
	KindNotFound         = ErrorKind("NotFound")
)

// Error is the typed failure every service operation reports to its caller.
// Field names the offending input when there is one.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (v *Error) Error() string {
	if len(v.Field) > 0 {
		return fmt.Sprintf("%s: %s: %s", v.Kind, v.Field, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// Is matches on kind only, so errors.Is(err, ErrNotFound) works for any not found error.
func (v *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return v.Kind == other.Kind
}

var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrDuplicateAddress = &Error{Kind: KindDuplicateAddress}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NewDuplicateAddressError(message string) *Error {
	return &Error{Kind: KindDuplicateAddress, Field: "address", Message: message}
}

func NewPermissionDeniedError(message string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

func NewNotFoundError(resource string) *Error {
	return &Error{Kind: KindNotFound, Field: resource, Message: resource + " was not found"}
}

// KindOf returns the kind carried by err, or an empty kind for unexpected failures.
func KindOf(err error) ErrorKind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}

// wrapLookupError turns a missing row into NotFound and keeps anything else as an internal failure.
func wrapLookupError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if database.IsNotFound(err) {
		return NewNotFoundError(resource)
	}
	return fmt.Errorf("unable to get %s: %v", resource, err)
}
