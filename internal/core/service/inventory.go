package service

import (
	"context"
	"fmt"

	"github.com/chaitanyak175/TicketBoss/internal/port"
)

// InventoryEngine performs the one conditional mutation that changes an
// event's available seats. It makes a single attempt per call and never
// retries internally; retry policy belongs to callers so per-attempt latency
// stays bounded.
type InventoryEngine struct {
	store port.LedgerStore
}

func NewInventoryEngine(store port.LedgerStore) *InventoryEngine {
	return &InventoryEngine{store: store}
}

// TryAdjust applies delta to the event's available seats iff the row's
// version still equals expectedVersion, bumping the version in the same
// write. applied=false signals a lost race with no state change.
//
// The engine does not re-validate seat bounds. Callers must check
// sufficiency against the same snapshot that produced expectedVersion; a
// stale check cannot slip through because the version gate rejects the write.
func (e *InventoryEngine) TryAdjust(ctx context.Context, eventID string, delta, expectedVersion int) (bool, error) {
	applied, err := e.store.AdjustAvailableSeats(ctx, eventID, delta, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("adjust seats for %s: %w", eventID, err)
	}
	return applied, nil
}
