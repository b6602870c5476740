// Package apperrors error kinds shared by the registry and the ledger.
// Callers match them with errors.Is; services wrap them with context.
package apperrors

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidEnum         = errors.New("invalid enumeration value")
	ErrAlreadyApproved     = errors.New("already approved")
	ErrAlreadyPurchased    = errors.New("already purchased")
	ErrNotForSale          = errors.New("not for sale")
	ErrNotApproved         = errors.New("not approved")
	ErrInvalidAppID        = errors.New("invalid app id")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInvalidPeriod       = errors.New("invalid billing period")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrOutOfBounds         = errors.New("index out of bounds")
	ErrTransferFailed      = errors.New("token transfer failed")
	ErrOverflow            = errors.New("amount overflow")
)
