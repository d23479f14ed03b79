package entity

import "time"

type EnrollmentEvent struct {
	ID uint64

	PaymentID uint64

	EventType string
	Detail    *string

	CreatedAt time.Time
}
