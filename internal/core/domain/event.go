package domain

import "time"

// Event is the inventory pool being protected. AvailableSeats is the
// contended counter; Version is the optimistic-lock token bumped on every
// successful mutation of the row.
type Event struct {
	EventID        string
	Name           string
	TotalSeats     int
	AvailableSeats int
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
