package port

import "context"

// SummaryCache is an optional read-through cache for event summaries. The
// cached payload is advisory only; a miss or cache failure must never block
// serving from the ledger.
type SummaryCache interface {
	// GetSummary returns the cached payload for the event, or ok=false on a miss.
	GetSummary(ctx context.Context, eventID string) (payload []byte, ok bool, err error)

	// SetSummary stores the payload with the cache's configured TTL.
	SetSummary(ctx context.Context, eventID string, payload []byte) error

	// InvalidateSummary drops the cached payload after a mutation.
	InvalidateSummary(ctx context.Context, eventID string) error
}
