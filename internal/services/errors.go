package services

import "errors"

// Service-level error taxonomy. Handlers map these onto HTTP statuses; the
// services themselves never import net/http.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for out-of-range quantities, prices and
	// other validation failures. No partial mutation has happened.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when a capability or ownership check failed.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when a concurrent update on the credit ledger
	// could not be resolved within the retry bound.
	ErrConflict = errors.New("conflict")
	// ErrUpstream is returned when an external collaborator is unreachable
	// or rejected the call.
	ErrUpstream = errors.New("upstream failure")
)

// ErrInsufficientCredits is returned when a listing, price update or sale
// asks for more credits than the project has unsold.
var ErrInsufficientCredits = newInvalidInput("insufficient unsold credits")

// ErrExceedsForSaleCap is returned when a sale asks for more credits than the
// project has declared for sale.
var ErrExceedsForSaleCap = newInvalidInput("quantity exceeds credits listed for sale")

func newInvalidInput(msg string) error {
	return &invalidInputError{msg: msg}
}

type invalidInputError struct {
	msg string
}

func (e *invalidInputError) Error() string { return e.msg }

func (e *invalidInputError) Unwrap() error { return ErrInvalidInput }
