package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
	"github.com/chaitanyak175/TicketBoss/internal/port"
)

// driftObservation records a positive drift seen for an event so the next
// sweep can confirm it before repairing.
type driftObservation struct {
	drift   int
	version int
}

// Reconciler sweeps events for violations of the conservation equality
// totalSeats - availableSeats == sum(confirmed seats). The cancel path marks
// a reservation cancelled before its seat credit is confirmed, so a lost
// credit race leaves positive drift; the sweep credits it back through the
// same version-gated write the live paths use.
//
// Positive drift is also the transient state of every in-flight reserve
// between its seat debit and its reservation insert, so a single observation
// proves nothing. A repair requires the same drift at the same event version
// on two consecutive sweeps: an unchanged version means no write landed in
// between, so the drift is stale, not in-flight.
type Reconciler struct {
	store    port.LedgerStore
	engine   *InventoryEngine
	interval time.Duration

	mu      sync.Mutex
	pending map[string]driftObservation
}

func NewReconciler(store port.LedgerStore, engine *InventoryEngine, interval time.Duration) *Reconciler {
	return &Reconciler{
		store:    store,
		engine:   engine,
		interval: interval,
		pending:  make(map[string]driftObservation),
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.SweepAll(ctx); err != nil {
				log.Printf("reconciler: sweep failed: %v", err)
			}
		}
	}
}

// SweepAll reconciles every event once.
func (r *Reconciler) SweepAll(ctx context.Context) error {
	ids, err := r.store.ListEventIDs(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	for _, id := range ids {
		if err := r.SweepEvent(ctx, id); err != nil {
			log.Printf("reconciler: event %s: %v", id, err)
		}
	}
	return nil
}

// SweepEvent measures drift for one event and repairs confirmed-stale drift
// with a single CAS attempt. A conflicted repair means a writer got in after
// the confirming read, so the observation is discarded and re-measured from
// scratch; a repair is never applied twice for the same lost credit.
func (r *Reconciler) SweepEvent(ctx context.Context, eventID string) error {
	event, err := r.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	confirmed, err := r.store.ListReservations(ctx, eventID, domain.ReservationStatusConfirmed)
	if err != nil {
		return fmt.Errorf("list confirmed reservations: %w", err)
	}

	held := 0
	for _, res := range confirmed {
		held += res.Seats
	}

	drift := (event.TotalSeats - event.AvailableSeats) - held
	if drift <= 0 {
		// Zero drift is the steady state. Negative drift would mean an
		// in-flight reserve between the two reads; never "repair" it.
		r.clearPending(eventID)
		return nil
	}

	if !r.confirmPending(eventID, drift, event.Version) {
		// First observation, or the event moved since the last one. Hold the
		// repair until the next sweep re-observes the same drift at the same
		// version.
		return nil
	}

	applied, err := r.engine.TryAdjust(ctx, eventID, drift, event.Version)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("reconciler: event %s: repair of %d seats lost a race, re-observing", eventID, drift)
		return nil
	}

	log.Printf("reconciler: event %s: credited %d drifted seats", eventID, drift)
	return nil
}

// confirmPending reports whether the same drift was already observed at the
// same version on the previous sweep. The observation is consumed either way:
// a confirmed repair starts fresh, an unconfirmed one is replaced.
func (r *Reconciler) confirmPending(eventID string, drift, version int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.pending[eventID]
	if ok && prev.drift == drift && prev.version == version {
		delete(r.pending, eventID)
		return true
	}
	r.pending[eventID] = driftObservation{drift: drift, version: version}
	return false
}

func (r *Reconciler) clearPending(eventID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, eventID)
}
