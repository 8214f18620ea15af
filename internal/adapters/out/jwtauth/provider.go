// Package jwtauth implements ports.IdentityProvider with HS256 signed JWTs carrying
// "id" and "role" claims.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

var _ ports.IdentityProvider = (*Provider)(nil)

var ErrSecretIsRequired = errors.New("jwt secret is required")

type claims struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Provider struct {
	secret []byte
	now    func() time.Time
}

func NewProvider(secret string) (*Provider, error) {
	if secret == "" {
		return nil, ErrSecretIsRequired
	}
	return &Provider{secret: []byte(secret), now: time.Now}, nil
}

// Authenticate verifies the signature and expiry. A token without an id claim is
// rejected; a missing role defaults to customer.
func (p *Provider) Authenticate(_ context.Context, token string) (ports.Principal, error) {
	if token == "" {
		return ports.Principal{}, ports.ErrUnauthenticated
	}

	parsed := &claims{}
	_, err := jwt.ParseWithClaims(token, parsed, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return ports.Principal{}, fmt.Errorf("%w: %w", ports.ErrUnauthenticated, err)
	}

	id := kernel.NewIdentity(parsed.ID)
	if id.IsEmpty() {
		return ports.Principal{}, fmt.Errorf("%w: id claim is missing", ports.ErrUnauthenticated)
	}

	role := ports.Role(parsed.Role)
	if role == "" {
		role = ports.RoleCustomer
	}
	return ports.Principal{ID: id, Role: role}, nil
}

// Issue signs a token for principal. A zero ttl issues a token without expiry.
func (p *Provider) Issue(principal ports.Principal, ttl time.Duration) (string, error) {
	c := claims{
		ID:   principal.ID.String(),
		Role: string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(p.now()),
		},
	}
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(p.now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
}
