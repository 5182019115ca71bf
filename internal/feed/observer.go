package feed

import "github.com/Elahizes/spin-wheel/internal/domain"

// Observer receives lifecycle and delivery signals, typically for metrics.
type Observer interface {
	AttachmentOpened(name domain.FeedName)
	AttachmentClosed(name domain.FeedName)
	SnapshotDelivered(name domain.FeedName)
	DeliveryFailed(name domain.FeedName)
}

type noopObserver struct{}

func (noopObserver) AttachmentOpened(domain.FeedName)  {}
func (noopObserver) AttachmentClosed(domain.FeedName)  {}
func (noopObserver) SnapshotDelivered(domain.FeedName) {}
func (noopObserver) DeliveryFailed(domain.FeedName)    {}
