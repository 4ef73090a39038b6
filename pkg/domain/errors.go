// Package domain holds the error taxonomy shared by every engine operation.
package domain

import "errors"

var (
	// ErrAccountNotFound is returned when an account is missing or not owned
	// by the caller.
	ErrAccountNotFound = errors.New("account not found")

	// ErrHoldingNotFound is returned when a holding is missing or not owned
	// by the caller.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrTransactionNotFound is returned when a transaction is missing or not
	// owned by the caller.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvestmentNotFound is returned when an investment transaction is
	// missing or not owned by the caller.
	ErrInvestmentNotFound = errors.New("investment transaction not found")

	// ErrValidation is returned when input violates a business invariant.
	ErrValidation = errors.New("validation error")

	// ErrConversionFailure is returned when an exchange rate is unavailable or
	// unusable. A failed rate fetch is never treated as rate = 1.
	ErrConversionFailure = errors.New("currency conversion failure")

	// ErrConcurrencyConflict is reserved for lock-contention signaling.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)
