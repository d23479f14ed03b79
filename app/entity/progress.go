package entity

import "time"

// Progress tracks lecture completion for one enrollment. Exactly one
// record exists per (user, course) pair; the lecture set starts empty.
type Progress struct {
	ID uint64

	UserID   string
	CourseID string

	CompletedLectures []string

	CreatedAt time.Time
}
