package port

import (
	"context"

	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
)

// LedgerStore is the durable keyed storage the core consumes. Implementations
// only need single-row reads and a single-row compare-and-swap on the event
// version; no multi-row transactions are required.
type LedgerStore interface {
	// GetEvent returns the event or domain.ErrEventNotFound.
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)

	// GetReservation returns the reservation or domain.ErrReservationNotFound.
	GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)

	// AdjustAvailableSeats applies available_seats += delta and version += 1
	// in one conditional write gated on version == expectedVersion. Returns
	// false with no state change when the version no longer matches.
	AdjustAvailableSeats(ctx context.Context, eventID string, delta, expectedVersion int) (bool, error)

	// InsertReservation persists a new reservation, domain.ErrDuplicateID on
	// a reservation_id collision.
	InsertReservation(ctx context.Context, res domain.Reservation) error

	// UpdateReservationStatus moves a reservation along the one-way
	// confirmed -> cancelled edge. Returns false when the row was not in the
	// required source state, so concurrent cancels of one id elect a single
	// winner.
	UpdateReservationStatus(ctx context.Context, reservationID string, status domain.ReservationStatus) (bool, error)

	// ListReservations returns all reservations for the event with the given
	// status. Order is unspecified.
	ListReservations(ctx context.Context, eventID string, status domain.ReservationStatus) ([]domain.Reservation, error)

	// ListEventIDs returns the ids of all events, for the reconcile sweep.
	ListEventIDs(ctx context.Context) ([]string, error)

	// InsertEvent persists a new event row. Used by startup seeding.
	InsertEvent(ctx context.Context, ev domain.Event) error
}
