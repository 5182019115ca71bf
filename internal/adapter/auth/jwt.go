// Package auth implements domain.CredentialCodec with HS256-signed JWTs.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

const defaultTTL = time.Hour

type tokenClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Codec signs and verifies caller credentials.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clockwork.Clock
	parser *jwt.Parser
}

func NewCodec(secret, issuer string, ttl time.Duration, clock clockwork.Clock) *Codec {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock:  clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithIssuedAt(),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock.Now),
		),
	}
}

func (c *Codec) Issue(p *domain.Principal) (string, error) {
	if len(c.secret) == 0 {
		return "", errors.New("token secret not configured")
	}
	if p == nil || p.ID == "" {
		return "", errors.New("principal is required")
	}

	now := c.clock.Now()
	claims := tokenClaims{
		Admin: p.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) Verify(token string) (*domain.Claims, error) {
	var claims tokenClaims
	_, err := c.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid token: missing subject")
	}
	if claims.IssuedAt == nil {
		return nil, errors.New("invalid token: missing iat")
	}

	return &domain.Claims{
		Subject:  claims.Subject,
		Admin:    claims.Admin,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}

var _ domain.CredentialCodec = (*Codec)(nil)
