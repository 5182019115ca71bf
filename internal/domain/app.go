package domain

import "context"

// SpinDeleter removes spin events in bounded atomic chunks.
type SpinDeleter interface {
	DeleteSpins(ctx context.Context, ids []string) (int, error)
}

// Gatekeeper authenticates callers and issues the admin capability.
type Gatekeeper interface {
	Authenticate(ctx context.Context, credential string) (*Principal, error)
	Authorize(principal *Principal) error
	GrantAdmin(ctx context.Context, uid, secret string) (*Principal, error)
}

// CatalogService serves read-only dashboard lookups.
type CatalogService interface {
	ListPrizes(ctx context.Context) ([]Prize, error)
	GetUserDetails(ctx context.Context, id string) (*Principal, error)
}
