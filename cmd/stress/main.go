// Stress drives concurrent reservations at the in-memory ledger and checks
// the inventory invariants: no overselling, conservation, version
// monotonicity. Callers retry conflicts from a fresh read, the way an HTTP
// client would resubmit a 409.
package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chaitanyak175/TicketBoss/internal/adapter/storage"
	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
	"github.com/chaitanyak175/TicketBoss/internal/core/service"
)

const (
	eventID       = "stress-event"
	totalSeats    = 200
	totalRequests = 500
	seatsPerReq   = 1
	maxSeats      = 10
)

func main() {
	ctx := context.Background()

	ledger := storage.NewMemoryAdapter()
	now := time.Now().UTC()
	_ = ledger.InsertEvent(ctx, domain.Event{
		EventID:        eventID,
		Name:           "Stress Event",
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		CreatedAt:      now,
		UpdatedAt:      now,
	})

	engine := service.NewInventoryEngine(ledger)
	reservations := service.NewReservationService(ledger, engine, nil, maxSeats)

	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var conflictRetries atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(partner int) {
			defer wg.Done()

			for {
				_, err := reservations.Reserve(ctx, eventID, fmt.Sprintf("partner-%d", partner), seatsPerReq)
				if err == nil {
					successCount.Add(1)
					return
				}
				if errors.Is(err, domain.ErrConflict) {
					conflictRetries.Add(1)
					continue
				}
				soldOutCount.Add(1)
				return
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	soldOut := soldOutCount.Load()

	fmt.Println("========== STRESS RESULTS ==========")
	fmt.Printf("Total Seats:      %d\n", totalSeats)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", soldOut)
	fmt.Printf("Conflict Retries: %d\n", conflictRetries.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("====================================")

	if success == totalSeats && soldOut == totalRequests-totalSeats {
		fmt.Printf("PASS: exactly %d reservations succeeded\n", totalSeats)
	} else {
		fmt.Printf("FAIL: expected %d success/%d sold-out, got %d/%d\n",
			totalSeats, totalRequests-totalSeats, success, soldOut)
	}

	event, _ := ledger.GetEvent(ctx, eventID)
	confirmed, _ := ledger.ListReservations(ctx, eventID, domain.ReservationStatusConfirmed)
	held := 0
	for _, r := range confirmed {
		held += r.Seats
	}

	fmt.Printf("Final Available:  %d (version %d)\n", event.AvailableSeats, event.Version)
	if event.AvailableSeats >= 0 && event.TotalSeats-event.AvailableSeats == held {
		fmt.Println("PASS: conservation invariant holds")
	} else {
		fmt.Printf("FAIL: totalSeats-availableSeats=%d but confirmed seats=%d\n",
			event.TotalSeats-event.AvailableSeats, held)
	}
}
