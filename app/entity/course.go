package entity

import "time"

type Course struct {
	ID          string
	Title       string
	Description string
	Image       string
	Price       float64
	Creator     string
	CreatedAt   time.Time
}
