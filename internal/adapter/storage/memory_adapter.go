package storage

import (
	"context"
	"sync"
	"time"

	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
)

// MemoryAdapter is an in-process port.LedgerStore with the same CAS semantics
// as the MySQL adapter. It backs unit tests and the stress tool; nothing in
// the core can tell the two stores apart.
type MemoryAdapter struct {
	mu           sync.Mutex
	events       map[string]domain.Event
	reservations map[string]domain.Reservation
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		events:       make(map[string]domain.Event),
		reservations: make(map[string]domain.Reservation),
	}
}

func (m *MemoryAdapter) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &ev, nil
}

func (m *MemoryAdapter) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[reservationID]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return &res, nil
}

func (m *MemoryAdapter) AdjustAvailableSeats(ctx context.Context, eventID string, delta, expectedVersion int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.events[eventID]
	if !ok || ev.Version != expectedVersion {
		return false, nil
	}
	ev.AvailableSeats += delta
	ev.Version++
	ev.UpdatedAt = time.Now().UTC()
	m.events[eventID] = ev
	return true, nil
}

func (m *MemoryAdapter) InsertReservation(ctx context.Context, res domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reservations[res.ReservationID]; exists {
		return domain.ErrDuplicateID
	}
	m.reservations[res.ReservationID] = res
	return nil
}

func (m *MemoryAdapter) UpdateReservationStatus(ctx context.Context, reservationID string, status domain.ReservationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[reservationID]
	if !ok || res.Status != domain.ReservationStatusConfirmed {
		return false, nil
	}
	res.Status = status
	res.UpdatedAt = time.Now().UTC()
	m.reservations[reservationID] = res
	return true, nil
}

func (m *MemoryAdapter) ListReservations(ctx context.Context, eventID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Reservation
	for _, res := range m.reservations {
		if res.EventID == eventID && res.Status == status {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *MemoryAdapter) ListEventIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.events))
	for id := range m.events {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemoryAdapter) InsertEvent(ctx context.Context, ev domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[ev.EventID] = ev
	return nil
}
