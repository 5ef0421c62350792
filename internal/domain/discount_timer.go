package domain

import "time"

// DiscountTimerID is the key of the only discount timer row.
const DiscountTimerID = 1

// DiscountTimer drives the site-wide promotional countdown.
type DiscountTimer struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	EndsAt    time.Time `json:"ends_at" db:"ends_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
