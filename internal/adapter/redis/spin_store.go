package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

// MaxBatchOps is the largest number of deletes one batch may commit.
const MaxBatchOps = 500

// SpinStore keeps spin documents, their time ordering and the prize
// distribution in Redis.
//
//	spin:{id}               JSON document
//	spins:by_time           sorted set, member id, score timestamp (ms)
//	stats:prizeDistribution hash, label -> count
type SpinStore struct {
	rdb *goredis.Client
	db  int
}

var _ domain.SpinStore = (*SpinStore)(nil)

func NewSpinStore(rdb *goredis.Client) *SpinStore {
	return &SpinStore{rdb: rdb, db: rdb.Options().DB}
}

// RecentSpins returns the limit most recent spins, newest first. Index
// entries whose document is gone are skipped.
func (s *SpinStore) RecentSpins(ctx context.Context, limit int) ([]domain.SpinEvent, error) {
	if limit <= 0 {
		return []domain.SpinEvent{}, nil
	}

	ids, err := s.rdb.ZRevRange(ctx, spinIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read spin index: %w", err)
	}
	if len(ids) == 0 {
		return []domain.SpinEvent{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = spinKey(id)
	}
	docs, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read spins: %w", err)
	}

	events := make([]domain.SpinEvent, 0, len(docs))
	for i, raw := range docs {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		ev, err := decodeSpin(ids[i], str)
		if err != nil {
			slog.Warn("Skipping undecodable spin", "spin_id", ids[i], "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Distribution returns the prize distribution, empty when the document does
// not exist.
func (s *SpinStore) Distribution(ctx context.Context) (domain.PrizeDistribution, error) {
	raw, err := s.rdb.HGetAll(ctx, distributionKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read prize distribution: %w", err)
	}

	dist := make(domain.PrizeDistribution, len(raw))
	for label, value := range raw {
		count, err := strconv.ParseInt(value, 10, 64)
		if err != nil || count < 0 {
			slog.Warn("Skipping invalid distribution count", "label", label, "value", value)
			continue
		}
		dist[label] = count
	}
	return dist, nil
}

// RecordSpin writes a spin document, its index entry and the distribution
// increment in one transaction.
func (s *SpinStore) RecordSpin(ctx context.Context, principalID, prizeLabel string, at time.Time) (domain.SpinEvent, error) {
	ev := domain.SpinEvent{
		ID:          uuid.NewString(),
		PrincipalID: principalID,
		PrizeLabel:  prizeLabel,
		OccurredAt:  at.UTC().Truncate(time.Millisecond),
	}
	data, err := encodeSpin(ev)
	if err != nil {
		return domain.SpinEvent{}, err
	}

	label := prizeLabel
	if label == "" {
		label = domain.NoPrizeLabel
		ev.PrizeLabel = domain.NoPrizeLabel
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, spinKey(ev.ID), data, 0)
	pipe.ZAdd(ctx, spinIndexKey, goredis.Z{Score: float64(ev.OccurredAt.UnixMilli()), Member: ev.ID})
	pipe.HIncrBy(ctx, distributionKey, label, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.SpinEvent{}, fmt.Errorf("record spin transaction failed: %w", err)
	}
	return ev, nil
}

func (s *SpinStore) MaxBatchOps() int { return MaxBatchOps }

func (s *SpinStore) NewBatch() domain.WriteBatch {
	return &writeBatch{rdb: s.rdb}
}

// writeBatch removes the document and index entry of every id in one
// MULTI/EXEC transaction. Missing ids are no-ops.
type writeBatch struct {
	rdb *goredis.Client
	ids []string
}

func (b *writeBatch) Delete(id string) { b.ids = append(b.ids, id) }
func (b *writeBatch) Len() int         { return len(b.ids) }

func (b *writeBatch) Commit(ctx context.Context) error {
	if len(b.ids) == 0 {
		return nil
	}
	if len(b.ids) > MaxBatchOps {
		return fmt.Errorf("%w: %d > %d", domain.ErrBatchTooLarge, len(b.ids), MaxBatchOps)
	}

	members := make([]any, len(b.ids))
	keys := make([]string, len(b.ids))
	for i, id := range b.ids {
		members[i] = id
		keys[i] = spinKey(id)
	}

	pipe := b.rdb.TxPipeline()
	pipe.ZRem(ctx, spinIndexKey, members...)
	pipe.Del(ctx, keys...)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("delete transaction failed: %w", err)
	}
	return nil
}
