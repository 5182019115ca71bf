package app

import (
	"context"
	"fmt"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

// Catalog serves the read-only lookups of the dashboard.
type Catalog struct {
	prizes     domain.PrizeRepository
	principals domain.PrincipalRepository
}

func NewCatalog(prizes domain.PrizeRepository, principals domain.PrincipalRepository) *Catalog {
	return &Catalog{prizes: prizes, principals: principals}
}

func (c *Catalog) ListPrizes(ctx context.Context) ([]domain.Prize, error) {
	prizes, err := c.prizes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}
	return prizes, nil
}

// GetUserDetails returns domain.ErrPrincipalNotFound when id is unknown.
func (c *Catalog) GetUserDetails(ctx context.Context, id string) (*domain.Principal, error) {
	return c.principals.GetByID(ctx, id)
}
