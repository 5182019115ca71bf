package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

type PrizeRepo struct {
	pool *pgxpool.Pool
}

func NewPrizeRepo(pool *pgxpool.Pool) *PrizeRepo {
	return &PrizeRepo{pool: pool}
}

func (r *PrizeRepo) List(ctx context.Context) ([]domain.Prize, error) {
	query, args, err := psql.Select("id", "label", "weight", "active", "created_at").
		From("prizes").
		OrderBy("label ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build prize query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}

	prizes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Prize, error) {
		var p domain.Prize
		err := row.Scan(&p.ID, &p.Label, &p.Weight, &p.Active, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan prizes: %w", err)
	}
	return prizes, nil
}

func (r *PrizeRepo) Upsert(ctx context.Context, prize domain.Prize) error {
	query, args, err := psql.Insert("prizes").
		Columns("id", "label", "weight", "active").
		Values(prize.ID, prize.Label, prize.Weight, prize.Active).
		Suffix("ON CONFLICT (id) DO UPDATE SET label = EXCLUDED.label, weight = EXCLUDED.weight, active = EXCLUDED.active").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build prize upsert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert prize: %w", err)
	}
	return nil
}
