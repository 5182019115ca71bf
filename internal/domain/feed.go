package domain

import "context"

// FeedName identifies a live dashboard feed.
type FeedName string

const (
	FeedRecentEvents      FeedName = "recentEvents"
	FeedDistributionStats FeedName = "distributionStats"
)

// Event is one push from a live query: either a full snapshot or an error.
type Event[T any] struct {
	Data T
	Err  error
}

// LiveQuery is a push subscription against the store. Watch blocks until ctx
// is cancelled or the attachment fails. emit receives every full snapshot,
// fail receives delivery errors that do not end the attachment. Both are
// only called from the goroutine running Watch.
type LiveQuery[T any] interface {
	Watch(ctx context.Context, emit func(T), fail func(error)) error
}

// LiveQueryFunc adapts a function to LiveQuery.
type LiveQueryFunc[T any] func(ctx context.Context, emit func(T), fail func(error)) error

func (f LiveQueryFunc[T]) Watch(ctx context.Context, emit func(T), fail func(error)) error {
	return f(ctx, emit, fail)
}
