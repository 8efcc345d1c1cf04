package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both absent records and records owned by another
	// user; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrInvalidLoanTerms = errors.New("invalid loan terms")

	// ErrNonAmortizingLoan is returned when a loan's payment does not cover
	// the interest accruing each month, so it can never be paid off.
	ErrNonAmortizingLoan = errors.New("payment does not cover accruing interest")
)

// ValidationError reports malformed or out-of-range input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
