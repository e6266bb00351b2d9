package domain

import (
	"context"
	"time"
)

// UserStatus is the approval state of an account
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

// ParseUserStatus returns the status named by s or false if s is not one of
// the enumerated values.
func ParseUserStatus(s string) (UserStatus, bool) {
	switch UserStatus(s) {
	case UserStatusPending, UserStatusApproved, UserStatusRejected:
		return UserStatus(s), true
	}
	return "", false
}

// Role grants access to administrative routes
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // bcrypt, never serialized
	Status       UserStatus `json:"status"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Identity is the minimal user shape returned by the auth endpoints
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Identity returns the non-sensitive identity fields
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email}
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, status *UserStatus) ([]*User, error)
	UpdateStatus(ctx context.Context, id int64, status UserStatus) (*User, error)
	UpdateRole(ctx context.Context, id int64, role Role) (*User, error)
}
