// Package tokenstore persists the opaque bearer tokens that back a session.
// Customer and admin sessions use separate keys so the storefront and the
// back-office can be logged in independently.
package tokenstore

import "errors"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

var ErrNotFound = errors.New("token not found")

// Store is a minimal key/value facade over whatever persists tokens.
// An absent token means the session is anonymous.
type Store interface {
	// Token returns the persisted token for the role, or ErrNotFound.
	Token(role Role) (string, error)
	// Save persists the token for the role, replacing any previous one.
	Save(role Role, token string) error
	// Clear removes the token for the role. Clearing an absent token is a no-op.
	Clear(role Role) error
}
