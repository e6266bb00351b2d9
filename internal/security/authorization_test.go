package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
)

func TestPermissions(t *testing.T) {
	as := NewAuthorizationService(nil)
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}
	user := &domain.User{ID: 2, Role: domain.RoleUser}

	assert.NoError(t, as.ValidatePermission(admin, PermManageUsers))
	assert.NoError(t, as.ValidatePermission(user, PermManageOrders))

	err := as.ValidatePermission(user, PermManageUsers)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
	assert.Error(t, as.ValidatePermission(nil, PermManageOrders))
	assert.False(t, as.HasPermission(domain.Role("guest"), PermManageOrders))
}

func TestOwnershipHasNoAdminBypass(t *testing.T) {
	as := NewAuthorizationService(nil)
	owner := &domain.User{ID: 2, Role: domain.RoleUser}
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}

	assert.NoError(t, as.ValidateOwnership(owner, 2, ResourceProject, 10))
	assert.Error(t, as.ValidateOwnership(admin, 2, ResourceProject, 10))
	assert.Error(t, as.ValidateOwnership(nil, 2, ResourceProject, 11))
}
