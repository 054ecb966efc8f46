package partners

import (
	"errors"
	"fmt"
)

var (
	ErrPartnerNotFound = errors.New("partner not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrAlreadyPartner  = errors.New("user is already a partner")
	ErrNotOwner        = errors.New("caller does not own the partner")
	ErrInvalidInput    = errors.New("invalid input")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
