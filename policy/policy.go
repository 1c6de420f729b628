// Package policy holds the role predicates that gate every operation.
//
// A Principal is rebuilt from the database on each request, so group changes
// take effect immediately. Predicates never mutate state; a failed check
// returns an apperr PermissionDenied carrying the reason.
package policy

import (
	"slices"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
)

type Role int

const (
	RoleNone Role = iota
	RoleCustomer
	RoleDeliveryCrew
	RoleManager
)

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "manager"
	case RoleDeliveryCrew:
		return "delivery_crew"
	case RoleCustomer:
		return "customer"
	default:
		return "none"
	}
}

const (
	MsgManagerOnly      = "Only managers can access this method"
	MsgCustomerOnly     = "Only customers can access this method"
	MsgDeliveryCrewOnly = "Only delivery crew can access this method"
	MsgSuperuserOnly    = "Only administrators can access this method"
	MsgLoginRequired    = "Authentication credentials were not provided"
)

type Principal struct {
	UserID      uint
	Username    string
	Groups      []string
	IsSuperuser bool
}

// Anonymous is the zero principal.
var Anonymous = Principal{}

func FromUser(u *entity.User) Principal {
	return Principal{
		UserID:      u.ID,
		Username:    u.Username,
		Groups:      u.GroupNames(),
		IsSuperuser: u.IsSuperuser,
	}
}

func (p Principal) Authenticated() bool { return p.UserID != 0 }

func (p Principal) InGroup(name string) bool { return slices.Contains(p.Groups, name) }

// Role resolves the effective role with precedence Manager > Delivery_crew > Customer.
// Superuser status is orthogonal: a superuser with no groups has RoleNone.
func (p Principal) Role() Role {
	switch {
	case !p.Authenticated():
		return RoleNone
	case p.InGroup(entity.GroupManager):
		return RoleManager
	case p.InGroup(entity.GroupDeliveryCrew):
		return RoleDeliveryCrew
	case len(p.Groups) == 0 && !p.IsSuperuser:
		return RoleCustomer
	default:
		return RoleNone
	}
}

// Check is a single authorization predicate.
type Check func(Principal) error

func RequireAuthenticated(p Principal) error {
	if !p.Authenticated() {
		return apperr.Unauthorized(MsgLoginRequired)
	}
	return nil
}

func RequireManager(p Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.InGroup(entity.GroupManager) {
		return apperr.PermissionDenied(MsgManagerOnly)
	}
	return nil
}

func RequireDeliveryCrew(p Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.InGroup(entity.GroupDeliveryCrew) {
		return apperr.PermissionDenied(MsgDeliveryCrewOnly)
	}
	return nil
}

// RequireCustomer passes only for users in no group who are not superusers.
func RequireCustomer(p Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if len(p.Groups) > 0 || p.IsSuperuser {
		return apperr.PermissionDenied(MsgCustomerOnly)
	}
	return nil
}

func RequireSuperuser(p Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsSuperuser {
		return apperr.PermissionDenied(MsgSuperuserOnly)
	}
	return nil
}

// AnyOf tries checks in order and passes on the first success.
// On failure the first check's error is reported.
func AnyOf(checks ...Check) Check {
	return func(p Principal) error {
		var first error
		for _, check := range checks {
			err := check(p)
			if err == nil {
				return nil
			}
			if first == nil {
				first = err
			}
		}
		return first
	}
}
