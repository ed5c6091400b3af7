// internal/util/errors.go
package util

import "errors"

// Common application-specific errors. Handlers map these to HTTP responses;
// services wrap them with fmt.Errorf("...: %w", err) for context.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrInvalidState        = errors.New("operation not permitted in current state")
	ErrNotEligible         = errors.New("no active plan")
	ErrProofInvalid        = errors.New("captcha proof expired or invalid")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrPaymentRejected     = errors.New("payment signature rejected")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
