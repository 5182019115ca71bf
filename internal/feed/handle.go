package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

type State int

const (
	StateInactive State = iota
	StateActive
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateErrored:
		return "errored"
	default:
		return "inactive"
	}
}

// Sink receives every event of one attachment.
type Sink[T any] func(domain.Event[T])

type attachment struct {
	cancel context.CancelFunc
	done   chan struct{}
	// err is written before done is closed.
	err error
}

// Handle wraps one live query subscription.
type Handle[T any] struct {
	name     domain.FeedName
	observer Observer

	mu      sync.Mutex
	current *attachment
}

func NewHandle[T any](name domain.FeedName, observer Observer) *Handle[T] {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Handle[T]{name: name, observer: observer}
}

// Start attaches sink to query, stopping any previous attachment first.
func (h *Handle[T]) Start(query domain.LiveQuery[T], sink Sink[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	a := &attachment{cancel: cancel, done: make(chan struct{})}
	h.current = a

	h.observer.AttachmentOpened(h.name)
	go h.run(ctx, a, query, sink)
}

// Stop releases the attachment and returns once its goroutine has exited.
// Stopping an inactive handle is a no-op.
func (h *Handle[T]) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

// State reports the handle state and, when errored, the error that ended
// the attachment.
func (h *Handle[T]) State() (State, error) {
	h.mu.Lock()
	a := h.current
	h.mu.Unlock()

	if a == nil {
		return StateInactive, nil
	}
	select {
	case <-a.done:
		if a.err != nil {
			return StateErrored, a.err
		}
		return StateInactive, nil
	default:
		return StateActive, nil
	}
}

func (h *Handle[T]) stopLocked() {
	if h.current == nil {
		return
	}
	h.current.cancel()
	<-h.current.done
	h.current = nil
}

func (h *Handle[T]) run(ctx context.Context, a *attachment, query domain.LiveQuery[T], sink Sink[T]) {
	defer close(a.done)
	defer h.observer.AttachmentClosed(h.name)

	emit := func(v T) {
		if ctx.Err() != nil {
			return
		}
		h.observer.SnapshotDelivered(h.name)
		sink(domain.Event[T]{Data: v})
	}
	fail := func(err error) {
		if ctx.Err() != nil {
			return
		}
		h.observer.DeliveryFailed(h.name)
		slog.Warn("Feed delivery failed", "feed", h.name, "error", err)
		sink(domain.Event[T]{Err: err})
	}

	err := query.Watch(ctx, emit, fail)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		fail(err)
		a.err = err
		slog.Error("Feed attachment ended", "feed", h.name, "error", err)
	}
}
