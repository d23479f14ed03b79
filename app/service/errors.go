package service

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrInvalidPrice        = errors.New("course price is invalid")
	ErrAlreadyOwned        = errors.New("course already owned")
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
	ErrIntentMismatch      = errors.New("payment intent does not match this checkout")
)

// Stable reason codes surfaced alongside error messages. Clients branch
// on these, never on message text.
const (
	ReasonNotFound            = "not-found"
	ReasonInvalidPrice        = "invalid-price"
	ReasonAlreadyOwned        = "already-owned"
	ReasonProviderUnavailable = "provider-unavailable"
	ReasonPaymentNotSucceeded = "payment-not-succeeded"
	ReasonIntentMismatch      = "intent-mismatch"
)
