// Package access holds the roles a collection grants and the credentials
// services present to exercise them.
package access

import (
	"errors"
	"fmt"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
)

var ErrDenied = errors.New("access denied")

type Role string

const (
	// RoleMinter may mint new tickets into a collection.
	RoleMinter Role = "minter"
	// RoleAdmin may mark tickets of a collection as used.
	RoleAdmin Role = "admin"
	// RoleCustody moves listed tickets into and out of marketplace custody.
	RoleCustody Role = "custody"
)

// Policy maps each role of one collection to the single address holding it.
type Policy struct {
	holders map[Role]models.Address
}

func CollectionPolicy(c *models.Collection) Policy {
	return Policy{holders: map[Role]models.Address{
		RoleMinter: c.Minter,
		RoleAdmin:  c.Admin,
	}}
}

// CustodyPolicy grants RoleCustody to the marketplace custody account.
func CustodyPolicy(custody models.Address) Policy {
	return Policy{holders: map[Role]models.Address{RoleCustody: custody}}
}

// Require fails unless caller holds role. A role nobody holds is never granted.
func (p Policy) Require(role Role, caller models.Address) error {
	holder, ok := p.holders[role]
	if !ok || holder.IsNull() || caller.IsNull() || holder != caller {
		return fmt.Errorf("%w: %s is not %s", ErrDenied, caller, role)
	}
	return nil
}

// Credential is a role claim bound to an address, handed to a component at
// construction instead of trusting a bare address at call time.
type Credential struct {
	role    Role
	address models.Address
}

func NewMinter(addr models.Address) Credential {
	return Credential{role: RoleMinter, address: addr}
}

func NewCustodian(addr models.Address) Credential {
	return Credential{role: RoleCustody, address: addr}
}

func (c Credential) Role() Role              { return c.role }
func (c Credential) Address() models.Address { return c.address }

// Present checks the credential against p for the wanted role.
func (c Credential) Present(p Policy, want Role) error {
	if c.role != want {
		return fmt.Errorf("%w: credential has role %q, need %q", ErrDenied, c.role, want)
	}
	return p.Require(want, c.address)
}
