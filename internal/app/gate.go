package app

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

const principalCacheSize = 1024

// Gate authenticates callers and issues the admin capability against the
// server-held setup secret.
type Gate struct {
	principals  domain.PrincipalRepository
	codec       domain.CredentialCodec
	setupSecret string
	clock       clockwork.Clock

	cache   *expirable.LRU[string, *domain.Principal]
	lookups singleflight.Group

	// grants advances on every GrantAdmin. A lookup that started under an
	// older value does not populate the cache.
	cacheMu sync.Mutex
	grants  uint64
}

// NewGate creates a Gate. Principal lookups are cached for cacheTTL; a
// non-positive TTL disables the cache.
func NewGate(principals domain.PrincipalRepository, codec domain.CredentialCodec, setupSecret string, cacheTTL time.Duration, clock clockwork.Clock) *Gate {
	g := &Gate{
		principals:  principals,
		codec:       codec,
		setupSecret: setupSecret,
		clock:       clock,
	}
	if cacheTTL > 0 {
		g.cache = expirable.NewLRU[string, *domain.Principal](principalCacheSize, nil, cacheTTL)
	}
	return g
}

// Authenticate verifies credential and resolves its principal. The returned
// principal carries the admin claim of the credential, not of the stored
// record: a fresh credential is needed after the capability changes.
func (g *Gate) Authenticate(ctx context.Context, credential string) (*domain.Principal, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("%w: missing credential", domain.ErrUnauthenticated)
	}

	claims, err := g.codec.Verify(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	stored, err := g.lookup(ctx, claims.Subject)
	if errors.Is(err, domain.ErrPrincipalNotFound) {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}

	if claims.IssuedAt.Before(stored.CredentialsValidAfter) {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrCredentialRevoked)
	}

	p := *stored
	p.Admin = claims.Admin
	return &p, nil
}

// Authorize requires the admin capability.
func (g *Gate) Authorize(p *domain.Principal) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if !p.Admin {
		return domain.ErrPermissionDenied
	}
	return nil
}

// GrantAdmin sets the admin claim on uid when secret matches the setup
// secret and revokes the principal's existing credentials. The secret is
// checked before uid so callers without it learn nothing about principals.
func (g *Gate) GrantAdmin(ctx context.Context, uid, secret string) (*domain.Principal, error) {
	if g.setupSecret == "" {
		return nil, domain.ErrSecretNotConfigured
	}
	if !secretsEqual(secret, g.setupSecret) {
		return nil, domain.ErrInvalidSecret
	}

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, domain.ErrMissingUID
	}

	// Credential timestamps have second precision.
	revokedAt := g.clock.Now().Truncate(time.Second)
	p, err := g.principals.GrantAdmin(ctx, uid, revokedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to grant admin to %s: %w", uid, err)
	}

	g.invalidate(uid)
	slog.InfoContext(ctx, "Admin capability granted", "uid", uid)
	return p, nil
}

// IssueCredential mints a credential for an existing principal carrying its
// stored admin claim.
func (g *Gate) IssueCredential(ctx context.Context, uid string) (string, error) {
	p, err := g.principals.GetByID(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("failed to load principal: %w", err)
	}
	token, err := g.codec.Issue(p)
	if err != nil {
		return "", fmt.Errorf("failed to issue credential: %w", err)
	}
	return token, nil
}

func (g *Gate) lookup(ctx context.Context, id string) (*domain.Principal, error) {
	if g.cache != nil {
		if p, ok := g.cache.Get(id); ok {
			return p, nil
		}
	}

	v, err, _ := g.lookups.Do(id, func() (any, error) {
		gen := g.generation()
		p, err := g.principals.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		g.store(id, p, gen)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Principal), nil
}

func (g *Gate) generation() uint64 {
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()
	return g.grants
}

func (g *Gate) store(id string, p *domain.Principal, gen uint64) {
	if g.cache == nil {
		return
	}
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()
	if gen == g.grants {
		g.cache.Add(id, p)
	}
}

// invalidate drops the cached principal and detaches lookups already in
// flight, so later callers read the granted record.
func (g *Gate) invalidate(id string) {
	g.cacheMu.Lock()
	g.grants++
	if g.cache != nil {
		g.cache.Remove(id)
	}
	g.cacheMu.Unlock()
	g.lookups.Forget(id)
}

// Hashing first keeps the comparison constant-time regardless of length.
func secretsEqual(given, expected string) bool {
	a := sha256.Sum256([]byte(given))
	b := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
