package domain

import (
	"context"
	"time"
)

// NoPrizeLabel is shown for spin events that carry no prize label.
const NoPrizeLabel = "N/A"

// SpinEvent is one recorded reward outcome. Events are never mutated; they
// only disappear through a bulk delete.
type SpinEvent struct {
	ID          string
	PrincipalID string
	PrizeLabel  string
	OccurredAt  time.Time
}

// PrizeDistribution maps a prize label to how many times it was won.
type PrizeDistribution map[string]int64

// StatEntry is one row of a projected distribution.
type StatEntry struct {
	Label      string
	Count      int64
	Percentage int
}

// WriteBatch collects deletes and commits them atomically.
type WriteBatch interface {
	Delete(id string)
	Len() int
	Commit(ctx context.Context) error
}

// SpinBatcher creates atomic write batches against the spin store.
type SpinBatcher interface {
	NewBatch() WriteBatch
	MaxBatchOps() int
}

// SpinStore is the remote ordered document store holding spin events and
// the aggregated prize distribution.
type SpinStore interface {
	SpinBatcher
	WatchRecent(limit int) LiveQuery[[]SpinEvent]
	WatchDistribution() LiveQuery[PrizeDistribution]
	RecentSpins(ctx context.Context, limit int) ([]SpinEvent, error)
	Distribution(ctx context.Context) (PrizeDistribution, error)
}
