package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))
	assert.Equal(t, RoleManager, NormalizeRole("manager"))
	assert.Equal(t, RoleTechnician, NormalizeRole("technician"))

	// Unknown spellings collapse to the least-privileged role.
	assert.Equal(t, RoleTechnician, NormalizeRole(""))
	assert.Equal(t, RoleTechnician, NormalizeRole("Admin"))
	assert.Equal(t, RoleTechnician, NormalizeRole("service_boy"))
	assert.Equal(t, RoleTechnician, NormalizeRole("superuser"))
}

func TestAllowedMatrix(t *testing.T) {
	type row struct {
		cap        Capability
		admin      bool
		manager    bool
		technician bool
	}
	matrix := []row{
		{CapCustomersRead, true, true, true},
		{CapCustomersWrite, true, true, false},
		{CapServicesRead, true, true, true},
		{CapServicesWrite, true, true, false},
		{CapRentDues, true, true, false},
		{CapPurchases, true, true, false},
		{CapInventory, true, false, true},
		{CapUsersManage, true, false, false},
		{CapDashboardRead, true, true, true},
	}
	for _, r := range matrix {
		t.Run(string(r.cap), func(t *testing.T) {
			assert.Equal(t, r.admin, Allowed(RoleAdmin, r.cap), "admin")
			assert.Equal(t, r.manager, Allowed(RoleManager, r.cap), "manager")
			assert.Equal(t, r.technician, Allowed(RoleTechnician, r.cap), "technician")
		})
	}
}

func TestAllowedUnknownInputs(t *testing.T) {
	assert.False(t, Allowed(Role("intern"), CapCustomersRead))
	assert.False(t, Allowed(RoleAdmin, Capability("does-not-exist")))
}
