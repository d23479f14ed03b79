package entity

import "time"

// Payment is written exactly once per confirmed payment intent and is
// immutable afterwards. ProviderIntentID carries a unique key in storage
// and doubles as the idempotency key for confirmation retries.
type Payment struct {
	ID uint64

	ProviderIntentID string

	AmountCents int64
	Currency    string
	Status      string

	UserID   string
	CourseID string

	CreatedAt time.Time
}
