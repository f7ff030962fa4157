package entity

import "errors"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

var ErrUnauthorized = errors.New("actor lacks required role")

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Principal is an authenticated actor as returned by token verification.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// RequireRole is the single capability check used at the top of every
// staff-only operation. A nil principal (guest) is always rejected.
func RequireRole(p *Principal, allowed ...Role) (*Principal, error) {
	if p == nil {
		return nil, ErrUnauthorized
	}
	for _, r := range allowed {
		if p.Role == r {
			return p, nil
		}
	}
	return nil, ErrUnauthorized
}
