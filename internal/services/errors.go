package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSeatConflict means a seat was taken by a concurrent submission
	ErrSeatConflict = errors.New("seat is no longer available")
	// ErrSeatBusy means another submission holds a lock on a seat right now; the seat may still free up
	ErrSeatBusy = errors.New("seat is being booked by someone else")
	// ErrReferenceGenerationExhausted means no unused reference was found within the attempt bound
	ErrReferenceGenerationExhausted = errors.New("could not generate a unique reference")
	// ErrTooLate means the cancellation window has closed
	ErrTooLate = errors.New("too late to cancel")
	// ErrNotFound covers records that are absent or owned by someone else
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition means the requested status change is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidCredentials is returned for any failed login
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already exists
	ErrEmailTaken = errors.New("email is already registered")
	// ErrPaymentDeclined is returned when the payment gateway refuses a pay-now charge
	ErrPaymentDeclined = errors.New("payment declined")
)

// ValidationError is a user-correctable problem with one input field
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ValidationErrors collects every field problem found in one request
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationErrors) add(field, format string, args ...interface{}) {
	*v = append(*v, ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)})
}

// orNil returns nil when nothing was collected
func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// TransactionError wraps a storage failure during an atomic write.
// The transaction has been rolled back when this is returned.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries field validation problems
func IsValidation(err error) bool {
	var one ValidationError
	var many ValidationErrors
	return errors.As(err, &one) || errors.As(err, &many)
}

// FieldErrors flattens err into per-field messages for API responses
func FieldErrors(err error) []ValidationError {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many
	}
	var one ValidationError
	if errors.As(err, &one) {
		return []ValidationError{one}
	}
	return nil
}
