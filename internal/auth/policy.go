// Package auth holds the role model, the declarative authorization policy,
// and the storage contracts the session gate depends on. The policy is one
// table so the whole access model can be audited in a single place.
package auth

// Role is the closed set of principal roles. The third role's canonical name
// is "technician"; any other spelling seen in imported data is a display
// concern, not a distinct role.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
)

// NormalizeRole maps a free-form role string onto the closed enum, defaulting
// to technician for anything unknown.
func NormalizeRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleTechnician:
		return Role(s)
	}
	return RoleTechnician
}

// Capability names an action a route requires of the caller's role.
type Capability string

const (
	CapCustomersRead  Capability = "customers:read"
	CapCustomersWrite Capability = "customers:write"
	CapServicesRead   Capability = "services:read"
	CapServicesWrite  Capability = "services:write"
	CapRentDues       Capability = "rent-dues"
	CapPurchases      Capability = "purchases"
	CapInventory      Capability = "inventory"
	CapUsersManage    Capability = "users:manage"
	CapDashboardRead  Capability = "dashboard:read"
)

// policy maps each capability to the roles permitted to exercise it.
// Technicians are read-only on customers and services and have no access to
// rent dues or purchases; managers have no access to inventory; only admins
// manage user accounts.
var policy = map[Capability][]Role{
	CapCustomersRead:  {RoleAdmin, RoleManager, RoleTechnician},
	CapCustomersWrite: {RoleAdmin, RoleManager},
	CapServicesRead:   {RoleAdmin, RoleManager, RoleTechnician},
	CapServicesWrite:  {RoleAdmin, RoleManager},
	CapRentDues:       {RoleAdmin, RoleManager},
	CapPurchases:      {RoleAdmin, RoleManager},
	CapInventory:      {RoleAdmin, RoleTechnician},
	CapUsersManage:    {RoleAdmin},
	CapDashboardRead:  {RoleAdmin, RoleManager, RoleTechnician},
}

// Allowed is a pure predicate over (role, capability). It is evaluated on
// every request; authorization decisions are never cached across requests
// because a role can change between them.
func Allowed(role Role, cap Capability) bool {
	for _, r := range policy[cap] {
		if r == role {
			return true
		}
	}
	return false
}
