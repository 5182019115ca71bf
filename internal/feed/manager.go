package feed

import (
	"fmt"
	"sync"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Source provides the live queries a Manager subscribes to.
type Source interface {
	WatchRecent(limit int) domain.LiveQuery[[]domain.SpinEvent]
	WatchDistribution() domain.LiveQuery[domain.PrizeDistribution]
}

type recentSubscription struct {
	limit int
	sink  Sink[[]domain.SpinEvent]
}

// Manager owns the feeds of one dashboard activation. Each feed name has a
// single handle slot and the manager is its only writer.
type Manager struct {
	source Source

	mu     sync.Mutex
	closed bool

	recent    *Handle[[]domain.SpinEvent]
	recentSub *recentSubscription
	stats     *Handle[domain.PrizeDistribution]
	statsSink Sink[domain.PrizeDistribution]
}

func NewManager(source Source, observer Observer) *Manager {
	return &Manager{
		source: source,
		recent: NewHandle[[]domain.SpinEvent](domain.FeedRecentEvents, observer),
		stats:  NewHandle[domain.PrizeDistribution](domain.FeedDistributionStats, observer),
	}
}

// OnRecentEvents subscribes sink to the limit most recent spins, newest
// first. A non-positive limit selects the default; larger limits are capped.
// Subscribing again replaces the previous subscription.
func (m *Manager) OnRecentEvents(limit int, sink Sink[[]domain.SpinEvent]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrManagerClosed
	}

	m.recentSub = &recentSubscription{limit: clampLimit(limit), sink: sink}
	m.recent.Start(m.source.WatchRecent(m.recentSub.limit), m.recentSub.sink)
	return nil
}

// OnDistributionStats subscribes sink to the prize distribution document.
func (m *Manager) OnDistributionStats(sink Sink[domain.PrizeDistribution]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrManagerClosed
	}

	m.statsSink = sink
	m.stats.Start(m.source.WatchDistribution(), sink)
	return nil
}

// Refresh re-subscribes the named feed from scratch. Refreshing a feed that
// was never started is a no-op.
func (m *Manager) Refresh(name domain.FeedName) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrManagerClosed
	}
	return m.refreshLocked(name)
}

// RefreshAll re-subscribes every started feed.
func (m *Manager) RefreshAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrManagerClosed
	}
	for _, name := range []domain.FeedName{domain.FeedRecentEvents, domain.FeedDistributionStats} {
		if err := m.refreshLocked(name); err != nil {
			return err
		}
	}
	return nil
}

// TeardownAll stops every handle. It is safe to call repeatedly and when
// some feeds were never started.
func (m *Manager) TeardownAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.recent.Stop()
	m.stats.Stop()
}

// State reports the state of the named feed.
func (m *Manager) State(name domain.FeedName) (State, error) {
	switch name {
	case domain.FeedRecentEvents:
		return m.recent.State()
	case domain.FeedDistributionStats:
		return m.stats.State()
	default:
		return StateInactive, fmt.Errorf("%w: %q", domain.ErrUnknownFeed, name)
	}
}

func (m *Manager) refreshLocked(name domain.FeedName) error {
	switch name {
	case domain.FeedRecentEvents:
		if m.recentSub != nil {
			m.recent.Start(m.source.WatchRecent(m.recentSub.limit), m.recentSub.sink)
		}
	case domain.FeedDistributionStats:
		if m.statsSink != nil {
			m.stats.Start(m.source.WatchDistribution(), m.statsSink)
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownFeed, name)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return min(limit, MaxRecentLimit)
}
