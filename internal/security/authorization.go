package security

import (
	"log/slog"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
)

// Permission represents an action permission
type Permission string

// Permissions granted through RolePermissions
const (
	PermManageUsers    Permission = "manage_users"
	PermManageProjects Permission = "manage_projects"
	PermManageOrders   Permission = "manage_orders"
)

// ResourceType identifies the kind of resource being accessed
type ResourceType string

// ResourceProject is the only owned resource; orders inherit their project's owner
const ResourceProject ResourceType = "project"

// RolePermissions maps roles to their permissions
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermManageUsers,
		PermManageProjects,
		PermManageOrders,
	},
	domain.RoleUser: {
		PermManageProjects,
		PermManageOrders,
	},
}

// AuthorizationService handles role and ownership checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission returns an authorization error unless user's role
// grants permission.
func (as *AuthorizationService) ValidatePermission(user *domain.User, permission Permission) error {
	if user == nil || !as.HasPermission(user.Role, permission) {
		attrs := []any{slog.String("permission", string(permission))}
		if user != nil {
			attrs = append(attrs, slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
		}
		as.logger.Warn("permission denied", attrs...)
		return domain.NewAuthorizationError("Access denied")
	}
	return nil
}

// ValidateOwnership checks that user owns the resource. Projects are private
// to their owner, so the admin role grants no bypass here.
func (as *AuthorizationService) ValidateOwnership(user *domain.User, ownerID int64, resource ResourceType, resourceID int64) error {
	if user != nil && user.ID == ownerID {
		return nil
	}
	attrs := []any{
		slog.String("resource_type", string(resource)),
		slog.Int64("resource_id", resourceID),
		slog.Int64("owner_id", ownerID),
	}
	if user != nil {
		attrs = append(attrs, slog.Int64("user_id", user.ID))
	}
	as.logger.Warn("resource access denied", attrs...)
	return domain.NewAuthorizationError("Access denied")
}
