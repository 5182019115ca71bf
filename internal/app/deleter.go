package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

const DefaultDeleteChunkSize = 400

// DeleteMetrics records bulk delete outcomes.
type DeleteMetrics interface {
	ChunkCommitted(size int)
	CommitFailed()
	AuditFailed()
	ObserveDeleteDuration(d time.Duration)
}

// CommitError reports the first chunk the store rejected. Deleted counts the
// ids of every chunk committed before it.
type CommitError struct {
	Chunk   int
	Deleted int
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit chunk %d (deleted %d so far): %v", e.Chunk, e.Deleted, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Deleter partitions ids into chunks and commits one atomic batch per chunk,
// strictly in order, stopping at the first failure. It does not authorize.
type Deleter struct {
	store     domain.SpinBatcher
	auditor   domain.DeletionAuditor
	metrics   DeleteMetrics
	clock     clockwork.Clock
	chunkSize int
}

// NewDeleter creates a Deleter. auditor and metrics may be nil.
func NewDeleter(store domain.SpinBatcher, auditor domain.DeletionAuditor, metrics DeleteMetrics, clock clockwork.Clock, chunkSize int) (*Deleter, error) {
	if chunkSize < 1 || chunkSize > store.MaxBatchOps() {
		return nil, fmt.Errorf("chunk size %d outside 1..%d", chunkSize, store.MaxBatchOps())
	}
	return &Deleter{
		store:     store,
		auditor:   auditor,
		metrics:   metrics,
		clock:     clock,
		chunkSize: chunkSize,
	}, nil
}

// DeleteSpins deletes ids and returns how many were submitted in committed
// chunks. Empty ids are dropped; an empty request never touches the store.
// Deleting an id that does not exist is not an error and still counts.
//
// Issued commits are not cancelled with ctx.
func (d *Deleter) DeleteSpins(ctx context.Context, ids []string) (int, error) {
	ids = filterEmpty(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	start := d.clock.Now()
	commitCtx := context.WithoutCancel(ctx)
	actorID := ""
	if p, ok := domain.PrincipalFromContext(ctx); ok {
		actorID = p.ID
	}

	deleted := 0
	for chunkNo, chunk := range chunks(ids, d.chunkSize) {
		batch := d.store.NewBatch()
		for _, id := range chunk {
			batch.Delete(id)
		}

		if err := batch.Commit(commitCtx); err != nil {
			if d.metrics != nil {
				d.metrics.CommitFailed()
			}
			slog.ErrorContext(ctx, "Spin delete chunk failed", "chunk", chunkNo+1, "size", len(chunk), "deleted", deleted, "error", err)
			return deleted, &CommitError{Chunk: chunkNo + 1, Deleted: deleted, Err: err}
		}

		deleted += len(chunk)
		if d.metrics != nil {
			d.metrics.ChunkCommitted(len(chunk))
		}
		d.audit(commitCtx, domain.DeletionRecord{
			ActorID:     actorID,
			Chunk:       chunkNo + 1,
			IDs:         chunk,
			CommittedAt: d.clock.Now(),
		})
	}

	if d.metrics != nil {
		d.metrics.ObserveDeleteDuration(d.clock.Since(start))
	}
	slog.InfoContext(ctx, "Spins deleted", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// The chunk is already committed, so audit failures are only reported.
func (d *Deleter) audit(ctx context.Context, rec domain.DeletionRecord) {
	if d.auditor == nil {
		return
	}
	if err := d.auditor.RecordDeletion(ctx, rec); err != nil {
		if d.metrics != nil {
			d.metrics.AuditFailed()
		}
		slog.WarnContext(ctx, "Failed to publish deletion audit", "chunk", rec.Chunk, "error", err)
	}
}

func filterEmpty(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

func chunks(ids []string, size int) [][]string {
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		out = append(out, ids[start:min(start+size, len(ids))])
	}
	return out
}
