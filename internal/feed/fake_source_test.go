package feed

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

// fakeSource counts concurrently running attachments and lets tests push
// updates into whichever attachment is currently running.
type fakeSource struct {
	running    atomic.Int32
	maxRunning atomic.Int32
	starts     atomic.Int32

	mu       sync.Mutex
	limits   []int
	watchErr error

	recent chan []domain.SpinEvent
	dist   chan domain.PrizeDistribution
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		recent: make(chan []domain.SpinEvent, 8),
		dist:   make(chan domain.PrizeDistribution, 8),
	}
}

func (f *fakeSource) WatchRecent(limit int) domain.LiveQuery[[]domain.SpinEvent] {
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	f.mu.Unlock()
	return fakeWatch(f, f.recent, []domain.SpinEvent{})
}

func (f *fakeSource) WatchDistribution() domain.LiveQuery[domain.PrizeDistribution] {
	return fakeWatch(f, f.dist, domain.PrizeDistribution{})
}

func (f *fakeSource) setWatchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchErr = err
}

func (f *fakeSource) recordedLimits() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.limits...)
}

func fakeWatch[T any](f *fakeSource, updates <-chan T, initial T) domain.LiveQuery[T] {
	return domain.LiveQueryFunc[T](func(ctx context.Context, emit func(T), fail func(error)) error {
		n := f.running.Add(1)
		defer f.running.Add(-1)
		for {
			cur := f.maxRunning.Load()
			if n <= cur || f.maxRunning.CompareAndSwap(cur, n) {
				break
			}
		}
		f.starts.Add(1)

		f.mu.Lock()
		err := f.watchErr
		f.mu.Unlock()
		if err != nil {
			return err
		}

		emit(initial)
		for {
			select {
			case <-ctx.Done():
				return nil
			case v := <-updates:
				emit(v)
			}
		}
	})
}

type countingObserver struct {
	opened, closed, delivered, failed atomic.Int32
}

func (o *countingObserver) AttachmentOpened(domain.FeedName)  { o.opened.Add(1) }
func (o *countingObserver) AttachmentClosed(domain.FeedName)  { o.closed.Add(1) }
func (o *countingObserver) SnapshotDelivered(domain.FeedName) { o.delivered.Add(1) }
func (o *countingObserver) DeliveryFailed(domain.FeedName)    { o.failed.Add(1) }

func collect[T any]() (Sink[T], <-chan domain.Event[T]) {
	ch := make(chan domain.Event[T], 32)
	return func(ev domain.Event[T]) { ch <- ev }, ch
}
