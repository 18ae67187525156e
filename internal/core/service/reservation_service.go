package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
	"github.com/chaitanyak175/TicketBoss/internal/port"
)

var (
	ErrPartnerIDRequired = errors.New("partner id is required")
	ErrSeatsTooFew       = errors.New("seats must be at least 1")
	ErrSeatsTooMany      = errors.New("seats exceed the per-request maximum")
)

// Summary is the advisory point-in-time view of an event. ReservationCount
// and AvailableSeats are read without a shared lock, so under concurrent
// mutation they are a best-effort pair, never an authorization input.
type Summary struct {
	EventID          string `json:"eventId"`
	Name             string `json:"name"`
	TotalSeats       int    `json:"totalSeats"`
	AvailableSeats   int    `json:"availableSeats"`
	ReservationCount int    `json:"reservationCount"`
	Version          int    `json:"version"`
}

// ReservationService owns the reservation lifecycle: it snapshots the event,
// checks sufficiency, and drives the InventoryEngine's single-attempt CAS.
// Conflicts are surfaced to the caller rather than retried here.
type ReservationService struct {
	store    port.LedgerStore
	engine   *InventoryEngine
	cache    port.SummaryCache // nil disables caching
	maxSeats int
}

func NewReservationService(store port.LedgerStore, engine *InventoryEngine, cache port.SummaryCache, maxSeats int) *ReservationService {
	return &ReservationService{
		store:    store,
		engine:   engine,
		cache:    cache,
		maxSeats: maxSeats,
	}
}

// MaxSeatsPerRequest returns the configured per-request seat cap, for
// boundary messages.
func (s *ReservationService) MaxSeatsPerRequest() int {
	return s.maxSeats
}

// Reserve books seats against the event's available pool.
//
// The sufficiency check and the CAS use the same snapshot version, so a
// concurrent writer between read and write flips the CAS to not-applied and
// the request fails with domain.ErrConflict instead of overselling.
func (s *ReservationService) Reserve(ctx context.Context, eventID, partnerID string, seats int) (*domain.Reservation, error) {
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return nil, ErrPartnerIDRequired
	}
	if seats < 1 {
		return nil, ErrSeatsTooFew
	}
	if seats > s.maxSeats {
		return nil, ErrSeatsTooMany
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.AvailableSeats < seats {
		// Business rejection, not a race: no mutation, no retry.
		return nil, domain.ErrInsufficientCapacity
	}

	applied, err := s.engine.TryAdjust(ctx, eventID, -seats, event.Version)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrConflict
	}

	now := time.Now().UTC()
	res := domain.Reservation{
		ReservationID: uuid.NewString(),
		EventID:       eventID,
		PartnerID:     partnerID,
		Seats:         seats,
		Status:        domain.ReservationStatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.InsertReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("insert reservation %s: %w", res.ReservationID, err)
	}

	s.invalidateSummary(ctx, eventID)
	return &res, nil
}

// Cancel flips a confirmed reservation to cancelled and credits its seats
// back to the event. Cancelled and missing reservations are indistinguishable
// to the caller; both return domain.ErrReservationNotFound, which makes
// concurrent cancels of one id idempotent: at most one observes confirmed and
// performs the credit.
//
// The reservation is marked cancelled before the credit CAS is confirmed. A
// lost credit race leaves seats temporarily unreturned; the Reconciler sweep
// detects and repairs that drift.
func (s *ReservationService) Cancel(ctx context.Context, reservationID string) error {
	res, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.Status != domain.ReservationStatusConfirmed {
		return domain.ErrReservationNotFound
	}

	event, err := s.store.GetEvent(ctx, res.EventID)
	if err != nil {
		return err
	}

	flipped, err := s.store.UpdateReservationStatus(ctx, reservationID, domain.ReservationStatusCancelled)
	if err != nil {
		return fmt.Errorf("mark reservation %s cancelled: %w", reservationID, err)
	}
	if !flipped {
		// A concurrent cancel won the confirmed -> cancelled edge and owns
		// the seat credit.
		return domain.ErrReservationNotFound
	}

	applied, err := s.engine.TryAdjust(ctx, res.EventID, res.Seats, event.Version)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("credit %d seats to %s: %w", res.Seats, res.EventID, domain.ErrConflict)
	}

	s.invalidateSummary(ctx, res.EventID)
	return nil
}

// Summary aggregates the event row with the sum of confirmed reservation
// seats. Served from cache when fresh.
func (s *ReservationService) Summary(ctx context.Context, eventID string) (*Summary, error) {
	if s.cache != nil {
		if payload, ok, err := s.cache.GetSummary(ctx, eventID); err == nil && ok {
			var sum Summary
			if err := json.Unmarshal(payload, &sum); err == nil {
				return &sum, nil
			}
		}
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.store.ListReservations(ctx, eventID, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list confirmed reservations for %s: %w", eventID, err)
	}

	count := 0
	for _, r := range confirmed {
		count += r.Seats
	}

	sum := &Summary{
		EventID:          event.EventID,
		Name:             event.Name,
		TotalSeats:       event.TotalSeats,
		AvailableSeats:   event.AvailableSeats,
		ReservationCount: count,
		Version:          event.Version,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(sum); err == nil {
			_ = s.cache.SetSummary(ctx, eventID, payload)
		}
	}
	return sum, nil
}

func (s *ReservationService) invalidateSummary(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSummary(ctx, eventID); err != nil {
		log.Printf("summary cache invalidate for %s: %v", eventID, err)
	}
}
