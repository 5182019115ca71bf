package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

const principalColumns = "id, display_name, admin, credentials_valid_after, created_at, updated_at"

type PrincipalRepo struct {
	pool *pgxpool.Pool
}

func NewPrincipalRepo(pool *pgxpool.Pool) *PrincipalRepo {
	return &PrincipalRepo{pool: pool}
}

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var p domain.Principal
	if err := row.Scan(&p.ID, &p.DisplayName, &p.Admin, &p.CredentialsValidAfter, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PrincipalRepo) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	query, args, err := psql.Select(principalColumns).
		From("principals").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build principal query: %w", err)
	}

	p, err := scanPrincipal(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get principal by ID: %w", err)
	}
	return p, nil
}

// Upsert creates the principal or refreshes its display name. The admin
// claim is never touched here.
func (r *PrincipalRepo) Upsert(ctx context.Context, id, displayName string) (*domain.Principal, error) {
	query, args, err := psql.Insert("principals").
		Columns("id", "display_name").
		Values(id, displayName).
		Suffix("ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = now() RETURNING " + principalColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build principal upsert: %w", err)
	}

	p, err := scanPrincipal(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert principal: %w", err)
	}
	return p, nil
}

// GrantAdmin sets the admin claim and moves the revocation watermark
// forward to revokedAt. The watermark never moves backwards.
func (r *PrincipalRepo) GrantAdmin(ctx context.Context, id string, revokedAt time.Time) (*domain.Principal, error) {
	query, args, err := psql.Update("principals").
		Set("admin", true).
		Set("credentials_valid_after", sq.Expr("GREATEST(credentials_valid_after, ?)", revokedAt.UTC())).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + principalColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build admin grant: %w", err)
	}

	p, err := scanPrincipal(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to grant admin: %w", err)
	}
	return p, nil
}
