package ports

import (
	"context"
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
)

// ErrUnauthenticated is returned by IdentityProvider when a token is missing, malformed,
// expired or signed with the wrong key.
var ErrUnauthenticated = errors.New("unauthenticated")

// Role is the coarse principal type carried by the token. Authorization decisions are
// made against ownership and rosters, never against the role alone.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleDelivery Role = "delivery"
)

// Principal is an authenticated caller.
type Principal struct {
	ID   kernel.Identity
	Role Role
}

// IdentityProvider turns a bearer token into a Principal.
type IdentityProvider interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}
