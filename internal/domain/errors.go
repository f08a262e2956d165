package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrTransient marks infrastructure failures the caller may retry.
	ErrTransient = errors.New("transient storage failure")

	ErrPassSoldOut       = errors.New("not enough passes left")
	ErrInvalidTransition = errors.New("booking status does not allow this operation")
	// ErrDiscountBudgetExceeded is returned when confirming a booking would
	// push the event past its discount budget.
	ErrDiscountBudgetExceeded = errors.New("event discount budget exceeded")
)
