package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation is the audit trail of who holds how much of an event's seat
// budget. Rows are created confirmed, flip to cancelled at most once, and are
// never deleted.
type Reservation struct {
	ReservationID string
	EventID       string
	PartnerID     string
	Seats         int
	Status        ReservationStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
