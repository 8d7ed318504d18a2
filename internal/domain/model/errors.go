package model

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// Sentinel causes carried by ValidationError.
var (
	ErrNonPositivePrincipal = errors.New("principal must be positive")
	ErrPrincipalPrecision   = errors.New("principal must not have more than 2 decimal places")
	ErrInvalidTermCount     = errors.New("term count must be at least 1")
	ErrNegativeRate         = errors.New("annual rate must not be negative")
	ErrUnsupportedMethod    = errors.New("unsupported amortization method")
	ErrUnsupportedFrequency = errors.New("unsupported payment frequency")
	ErrMissingFirstDueDate  = errors.New("first due date is required")
	ErrNegativeOutstanding  = errors.New("installment outstanding amount is negative")
	ErrNegativeMoraRate     = errors.New("daily mora rate must not be negative")
	ErrInvalidCriteria      = errors.New("invalid scoring criteria")
	ErrInvalidPolicy        = errors.New("invalid scoring policy")
	ErrMissingLoanID        = errors.New("loan id is required")
)

// ValidationError is a caller-recoverable rejection of malformed input or
// configuration. Field names the offending input (or criterion).
type ValidationError struct {
	Err    error
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError for field with the given cause.
func NewValidationError(field string, cause error, reason string) *ValidationError {
	return &ValidationError{Field: field, Err: cause, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v (%s)", e.Field, e.Err, e.Reason)
}

// Unwrap exposes the sentinel cause.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvariantViolation signals a defect in the engine itself, such as a
// schedule that does not reconcile. It is raised with panic, never returned.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated: %s: %s", v.Invariant, v.Detail)
}

// Violate panics with an InvariantViolation.
func Violate(invariant, format string, args ...any) {
	panic(InvariantViolation{Invariant: invariant, Detail: fmt.Sprintf(format, args...)})
}
