package domain

import (
	"context"
	"time"
)

// Principal is an authenticated caller identity.
type Principal struct {
	ID          string
	DisplayName string
	Admin       bool
	// Credentials issued before this instant are revoked.
	CredentialsValidAfter time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type PrincipalRepository interface {
	GetByID(ctx context.Context, id string) (*Principal, error)
	Upsert(ctx context.Context, id, displayName string) (*Principal, error)
	// GrantAdmin sets the admin claim and revokes every credential issued so far.
	GrantAdmin(ctx context.Context, id string, revokedAt time.Time) (*Principal, error)
}

// Claims is the decoded content of a caller credential.
type Claims struct {
	Subject  string
	Admin    bool
	IssuedAt time.Time
}

// CredentialCodec issues and verifies caller credentials.
type CredentialCodec interface {
	Issue(principal *Principal) (string, error)
	Verify(token string) (*Claims, error)
}

type principalKey struct{}

// WithPrincipal stores the authenticated principal in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
