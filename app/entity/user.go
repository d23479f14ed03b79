package entity

import "time"

type User struct {
	ID    string
	Name  string
	Email string
	Role  string

	// Subscription holds the ids of courses the user owns. The checkout
	// flow only ever appends to this set.
	Subscription []string

	CreatedAt time.Time
}

func (u *User) Owns(courseID string) bool {
	for _, id := range u.Subscription {
		if id == courseID {
			return true
		}
	}
	return false
}
