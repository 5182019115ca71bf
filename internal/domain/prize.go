package domain

import (
	"context"
	"time"
)

// Prize is one entry of the prize catalogue.
type Prize struct {
	ID        string
	Label     string
	Weight    int
	Active    bool
	CreatedAt time.Time
}

type PrizeRepository interface {
	List(ctx context.Context) ([]Prize, error)
	Upsert(ctx context.Context, prize Prize) error
}
