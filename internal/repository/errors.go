package repository

import "errors"

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

var (
	// ErrDraftNotFound is returned when a booking draft is missing or expired.
	ErrDraftNotFound = errors.New("booking draft not found")
	// ErrInsufficientFunds is returned when a debit exceeds the wallet balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDuplicateBooking is returned when a booking key was already used.
	ErrDuplicateBooking = errors.New("booking already submitted")
	// ErrEmailTaken is returned when an account email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)
