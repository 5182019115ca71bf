package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

// requiredKeyspaceFlags: K keyspace channel, g generic (DEL), h hash, z sorted set.
const requiredKeyspaceFlags = "Kghz"

var errSubscriptionClosed = errors.New("keyspace subscription closed")

// EnableKeyspaceEvents adds the notification classes live queries depend on
// to the server's notify-keyspace-events setting, keeping existing ones.
func EnableKeyspaceEvents(ctx context.Context, rdb *goredis.Client) error {
	current, err := rdb.ConfigGet(ctx, "notify-keyspace-events").Result()
	if err != nil {
		return fmt.Errorf("failed to read notify-keyspace-events: %w", err)
	}

	flags := current["notify-keyspace-events"]
	merged := mergeFlags(flags, requiredKeyspaceFlags)
	if merged == flags {
		return nil
	}

	if err := rdb.ConfigSet(ctx, "notify-keyspace-events", merged).Err(); err != nil {
		return fmt.Errorf("failed to set notify-keyspace-events: %w", err)
	}
	slog.Info("Enabled Redis keyspace notifications", "flags", merged)
	return nil
}

// "A" is an alias for every event class except K, E, m and n.
func mergeFlags(current, required string) string {
	out := current
	for _, r := range required {
		if strings.ContainsRune(out, r) {
			continue
		}
		if strings.ContainsRune(out, 'A') && r != 'K' && r != 'E' {
			continue
		}
		out += string(r)
	}
	return out
}

// WatchRecent returns a live query over the limit most recent spins.
func (s *SpinStore) WatchRecent(limit int) domain.LiveQuery[[]domain.SpinEvent] {
	return domain.LiveQueryFunc[[]domain.SpinEvent](func(ctx context.Context, emit func([]domain.SpinEvent), fail func(error)) error {
		return watchKey(ctx, s.rdb, keyspaceChannel(s.db, spinIndexKey), func(ctx context.Context) {
			events, err := s.RecentSpins(ctx, limit)
			if err != nil {
				fail(err)
				return
			}
			emit(events)
		})
	})
}

// WatchDistribution returns a live query over the prize distribution.
func (s *SpinStore) WatchDistribution() domain.LiveQuery[domain.PrizeDistribution] {
	return domain.LiveQueryFunc[domain.PrizeDistribution](func(ctx context.Context, emit func(domain.PrizeDistribution), fail func(error)) error {
		return watchKey(ctx, s.rdb, keyspaceChannel(s.db, distributionKey), func(ctx context.Context) {
			dist, err := s.Distribution(ctx)
			if err != nil {
				fail(err)
				return
			}
			emit(dist)
		})
	})
}

// watchKey subscribes to channel, pushes an initial snapshot and then one
// snapshot per burst of notifications. Notifications that queue up while a
// snapshot is being read collapse into a single re-read.
func watchKey(ctx context.Context, rdb *goredis.Client, channel string, snapshot func(ctx context.Context)) error {
	pubsub := rdb.Subscribe(ctx, channel)
	defer func() { _ = pubsub.Close() }()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	ch := pubsub.Channel()
	snapshot(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return errSubscriptionClosed
			}
			if !drain(ch) {
				return errSubscriptionClosed
			}
			snapshot(ctx)
		}
	}
}

func drain(ch <-chan *goredis.Message) bool {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}
