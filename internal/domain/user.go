package domain

import "fmt"

type Role string

const (
	RoleCustomer    Role = "CUSTOMER"
	RoleClient      Role = "CLIENT"
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
	RoleRootAdmin   Role = "ROOT_ADMIN"
)

func ParseRole(s string) (Role, error) {
	role := Role(s)

	switch role {
	case RoleCustomer, RoleClient, RoleSystemAdmin, RoleRootAdmin:
		return role, nil
	}

	return "", fmt.Errorf("unknown role %q", s)
}

// IsPrivileged reports whether the role may act on bookings it does not own.
func (r Role) IsPrivileged() bool {
	return r == RoleSystemAdmin || r == RoleRootAdmin
}
