package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
	"github.com/chaitanyak175/TicketBoss/internal/core/service"
)

func TestSweepEvent_RepairsLostCredit(t *testing.T) {
	svc, ledger := newTestService(t, 500)
	ctx := context.Background()

	res, err := svc.Reserve(ctx, "node-meetup-2025", "p1", 3)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	// Reproduce the cancel window: the reservation is marked cancelled but
	// the seat credit never lands.
	flipped, err := ledger.UpdateReservationStatus(ctx, res.ReservationID, domain.ReservationStatusCancelled)
	if err != nil || !flipped {
		t.Fatalf("mark cancelled: flipped=%v err=%v", flipped, err)
	}

	engine := service.NewInventoryEngine(ledger)
	reconciler := service.NewReconciler(ledger, engine, time.Minute)

	// First sweep observes the drift, the second confirms it and credits.
	for i := 0; i < 2; i++ {
		if err := reconciler.SweepAll(ctx); err != nil {
			t.Fatalf("sweep %d failed: %v", i, err)
		}
	}

	event, _ := ledger.GetEvent(ctx, "node-meetup-2025")
	if event.AvailableSeats != 500 {
		t.Errorf("expected drift repaired to 500 seats, got %d", event.AvailableSeats)
	}
	if event.Version != 2 {
		t.Errorf("expected version 2 after repair, got %d", event.Version)
	}
}

func TestSweepEvent_SingleObservationDoesNotCredit(t *testing.T) {
	svc, ledger := newTestService(t, 500)
	ctx := context.Background()

	res, _ := svc.Reserve(ctx, "node-meetup-2025", "p1", 3)
	if _, err := ledger.UpdateReservationStatus(ctx, res.ReservationID, domain.ReservationStatusCancelled); err != nil {
		t.Fatalf("mark cancelled: %v", err)
	}

	engine := service.NewInventoryEngine(ledger)
	reconciler := service.NewReconciler(ledger, engine, time.Minute)
	if err := reconciler.SweepEvent(ctx, "node-meetup-2025"); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	// One observation is not proof of staleness; no credit yet.
	event, _ := ledger.GetEvent(ctx, "node-meetup-2025")
	if event.AvailableSeats != 497 || event.Version != 1 {
		t.Errorf("credit applied on first observation: seats=%d version=%d", event.AvailableSeats, event.Version)
	}
}

// An in-flight reserve sits between its seat debit and its reservation
// insert. That window looks like positive drift, but crediting it would
// overshoot availableSeats once the insert lands. The sweep must wait it out.
func TestSweepEvent_InFlightReserveNotRepaired(t *testing.T) {
	_, ledger := newTestService(t, 10)
	ctx := context.Background()

	engine := service.NewInventoryEngine(ledger)
	reconciler := service.NewReconciler(ledger, engine, time.Minute)

	// Debit as Reserve does, but hold the insert back.
	applied, err := engine.TryAdjust(ctx, "node-meetup-2025", -3, 0)
	if err != nil || !applied {
		t.Fatalf("debit: applied=%v err=%v", applied, err)
	}

	// A sweep lands mid-reserve.
	if err := reconciler.SweepEvent(ctx, "node-meetup-2025"); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	// The reserve completes its insert.
	now := time.Now().UTC()
	err = ledger.InsertReservation(ctx, domain.Reservation{
		ReservationID: "in-flight-res",
		EventID:       "node-meetup-2025",
		PartnerID:     "p1",
		Seats:         3,
		Status:        domain.ReservationStatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("insert reservation: %v", err)
	}

	// The next sweep sees zero drift and must leave everything alone.
	if err := reconciler.SweepEvent(ctx, "node-meetup-2025"); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}

	event, _ := ledger.GetEvent(ctx, "node-meetup-2025")
	if event.AvailableSeats != 7 || event.Version != 1 {
		t.Errorf("in-flight reserve corrupted: seats=%d version=%d", event.AvailableSeats, event.Version)
	}

	confirmed, _ := ledger.ListReservations(ctx, "node-meetup-2025", domain.ReservationStatusConfirmed)
	held := 0
	for _, r := range confirmed {
		held += r.Seats
	}
	if event.TotalSeats-event.AvailableSeats != held {
		t.Errorf("conservation violated: booked=%d confirmed=%d", event.TotalSeats-event.AvailableSeats, held)
	}
}

// A version change between observations invalidates the pending drift; the
// sweep starts over instead of crediting against a moved event.
func TestSweepEvent_VersionChangeResetsObservation(t *testing.T) {
	svc, ledger := newTestService(t, 500)
	ctx := context.Background()

	res, _ := svc.Reserve(ctx, "node-meetup-2025", "p1", 3)
	if _, err := ledger.UpdateReservationStatus(ctx, res.ReservationID, domain.ReservationStatusCancelled); err != nil {
		t.Fatalf("mark cancelled: %v", err)
	}

	engine := service.NewInventoryEngine(ledger)
	reconciler := service.NewReconciler(ledger, engine, time.Minute)
	if err := reconciler.SweepEvent(ctx, "node-meetup-2025"); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}

	// Another writer moves the event between sweeps.
	if _, err := svc.Reserve(ctx, "node-meetup-2025", "p2", 2); err != nil {
		t.Fatalf("interleaved reserve failed: %v", err)
	}

	if err := reconciler.SweepEvent(ctx, "node-meetup-2025"); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}

	// The second sweep re-observed at the new version; no credit yet.
	event, _ := ledger.GetEvent(ctx, "node-meetup-2025")
	if event.AvailableSeats != 495 || event.Version != 2 {
		t.Errorf("credit applied without confirmation: seats=%d version=%d", event.AvailableSeats, event.Version)
	}

	// A third sweep confirms the stable drift and repairs it.
	if err := reconciler.SweepEvent(ctx, "node-meetup-2025"); err != nil {
		t.Fatalf("third sweep failed: %v", err)
	}
	event, _ = ledger.GetEvent(ctx, "node-meetup-2025")
	if event.AvailableSeats != 498 || event.Version != 3 {
		t.Errorf("expected repaired 498 seats at version 3, got %d at %d", event.AvailableSeats, event.Version)
	}
}

func TestSweepEvent_NoDriftNoMutation(t *testing.T) {
	svc, ledger := newTestService(t, 500)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "node-meetup-2025", "p1", 4); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	engine := service.NewInventoryEngine(ledger)
	reconciler := service.NewReconciler(ledger, engine, time.Minute)
	for i := 0; i < 2; i++ {
		if err := reconciler.SweepEvent(ctx, "node-meetup-2025"); err != nil {
			t.Fatalf("sweep %d failed: %v", i, err)
		}
	}

	event, _ := ledger.GetEvent(ctx, "node-meetup-2025")
	if event.AvailableSeats != 496 || event.Version != 1 {
		t.Errorf("balanced event mutated: seats=%d version=%d", event.AvailableSeats, event.Version)
	}
}

func TestSweepEvent_RepairIsIdempotent(t *testing.T) {
	svc, ledger := newTestService(t, 500)
	ctx := context.Background()

	res, _ := svc.Reserve(ctx, "node-meetup-2025", "p1", 5)
	if _, err := ledger.UpdateReservationStatus(ctx, res.ReservationID, domain.ReservationStatusCancelled); err != nil {
		t.Fatalf("mark cancelled: %v", err)
	}

	engine := service.NewInventoryEngine(ledger)
	reconciler := service.NewReconciler(ledger, engine, time.Minute)
	for i := 0; i < 4; i++ {
		if err := reconciler.SweepEvent(ctx, "node-meetup-2025"); err != nil {
			t.Fatalf("sweep %d failed: %v", i, err)
		}
	}

	// Drift is re-measured each sweep, so the credit lands once.
	event, _ := ledger.GetEvent(ctx, "node-meetup-2025")
	if event.AvailableSeats != 500 {
		t.Errorf("expected 500 seats after repeated sweeps, got %d", event.AvailableSeats)
	}
	if event.Version != 2 {
		t.Errorf("expected version 2 after single repair, got %d", event.Version)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	_, ledger := newTestService(t, 500)
	engine := service.NewInventoryEngine(ledger)
	reconciler := service.NewReconciler(ledger, engine, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reconciler.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop after cancel")
	}
}
