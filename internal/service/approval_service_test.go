package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/repository/memory"
)

func seedUser(t *testing.T, repo domain.UserRepository, email string, status domain.UserStatus) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", Status: status, Role: domain.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.UserStatus
		want     bool
	}{
		{domain.UserStatusPending, domain.UserStatusApproved, true},
		{domain.UserStatusPending, domain.UserStatusRejected, true},
		{domain.UserStatusPending, domain.UserStatusPending, true},
		{domain.UserStatusApproved, domain.UserStatusApproved, true},
		{domain.UserStatusApproved, domain.UserStatusRejected, false},
		{domain.UserStatusApproved, domain.UserStatusPending, false},
		{domain.UserStatusRejected, domain.UserStatusApproved, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestSetStatus(t *testing.T) {
	store := memory.NewStore()
	svc := NewApprovalService(store.Users(), nil, nil, nil)
	ctx := context.Background()
	admin := &domain.User{ID: 100, Role: domain.RoleAdmin}

	u := seedUser(t, store.Users(), "a@x.com", domain.UserStatusPending)

	updated, err := svc.SetStatus(ctx, admin, u.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusApproved, updated.Status)

	again, err := svc.SetStatus(ctx, admin, u.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusApproved, again.Status)

	_, err = svc.SetStatus(ctx, admin, u.ID, "rejected")
	assert.ErrorIs(t, err, ErrStatusFinal)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestSetStatusInvalidInput(t *testing.T) {
	store := memory.NewStore()
	svc := NewApprovalService(store.Users(), nil, nil, nil)
	admin := &domain.User{ID: 100, Role: domain.RoleAdmin}
	u := seedUser(t, store.Users(), "a@x.com", domain.UserStatusPending)

	_, err := svc.SetStatus(context.Background(), admin, u.ID, "banned")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, "Invalid status", err.(*domain.Error).Message)

	_, err = svc.SetStatus(context.Background(), admin, 999, "approved")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestApprovalsRequireManageUsers(t *testing.T) {
	store := memory.NewStore()
	svc := NewApprovalService(store.Users(), nil, nil, nil)
	ctx := context.Background()
	member := seedUser(t, store.Users(), "member@x.com", domain.UserStatusApproved)
	u := seedUser(t, store.Users(), "a@x.com", domain.UserStatusPending)

	for _, actor := range []*domain.User{member, nil} {
		_, err := svc.SetStatus(ctx, actor, u.ID, "approved")
		assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))

		_, err = svc.ListUsers(ctx, actor, "")
		assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
	}

	got, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusPending, got.Status)
}

func TestListUsersByStatus(t *testing.T) {
	store := memory.NewStore()
	svc := NewApprovalService(store.Users(), nil, nil, nil)
	admin := &domain.User{ID: 100, Role: domain.RoleAdmin}
	seedUser(t, store.Users(), "a@x.com", domain.UserStatusPending)
	seedUser(t, store.Users(), "b@x.com", domain.UserStatusApproved)
	seedUser(t, store.Users(), "c@x.com", domain.UserStatusPending)

	all, err := svc.ListUsers(context.Background(), admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "c@x.com", all[0].Email)

	pending, err := svc.ListUsers(context.Background(), admin, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.ListUsers(context.Background(), admin, "nope")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestPromote(t *testing.T) {
	store := memory.NewStore()
	svc := NewApprovalService(store.Users(), nil, nil, nil)
	seedUser(t, store.Users(), "root@x.com", domain.UserStatusPending)

	u, err := svc.Promote(context.Background(), "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Equal(t, domain.UserStatusApproved, u.Status)
	assert.NoError(t, LoginGate(u))

	_, err = svc.Promote(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
