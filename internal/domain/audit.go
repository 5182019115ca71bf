package domain

import (
	"context"
	"time"
)

// DeletionRecord describes one committed delete chunk.
type DeletionRecord struct {
	ActorID     string
	Chunk       int
	IDs         []string
	CommittedAt time.Time
}

// DeletionAuditor publishes a record for every committed delete chunk.
type DeletionAuditor interface {
	RecordDeletion(ctx context.Context, rec DeletionRecord) error
}
