package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
	"github.com/aryan0dhankhar/ordertrack/internal/repository/memory"
	"github.com/aryan0dhankhar/ordertrack/internal/security/auth"
)

type memRevoker struct {
	revoked map[string]time.Time
}

func (m *memRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	m.revoked[jti] = until
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

type authFixture struct {
	store   *memory.Store
	tokens  *auth.TokenManager
	revoker *memRevoker
	auth    *AuthService
	users   domain.UserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := memory.NewStore()
	tokens, err := auth.NewTokenManager("test-secret", "", 0)
	require.NoError(t, err)
	revoker := &memRevoker{revoked: map[string]time.Time{}}
	svc := NewAuthService(store.Users(), auth.NewPasswordHasher(4), tokens, revoker, nil, 6, nil)
	return &authFixture{store: store, tokens: tokens, revoker: revoker, auth: svc, users: store.Users()}
}

func (f *authFixture) registerApproved(t *testing.T, email, password string) *domain.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), Credentials{Email: email, Password: password})
	require.NoError(t, err)
	user, err = f.users.UpdateStatus(context.Background(), user.ID, domain.UserStatusApproved)
	require.NoError(t, err)
	return user
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.auth.Register(context.Background(), Credentials{Email: "  a@x.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, domain.UserStatusPending, user.Status)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.Equal(t, domain.Identity{ID: user.ID, Email: "a@x.com"}, user.Identity())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, Credentials{Email: "a@x.com", Password: "other12"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	users, err := f.users.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Register(context.Background(), Credentials{Email: "not-an-email", Password: "123"})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindValidation, de.Kind)
	assert.Contains(t, de.Fields, "email")
	assert.Contains(t, de.Fields, "password")
}

func TestLoginApprovalGate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, Credentials{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountPending)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))

	_, err = f.users.UpdateStatus(ctx, user.ID, domain.UserStatusRejected)
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, Credentials{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountRejected)
	assert.Contains(t, err.Error(), "rejected")
}

func TestLoginInvalidCredentialsDoNotEnumerate(t *testing.T) {
	f := newAuthFixture(t)
	f.registerApproved(t, "a@x.com", "secret1")

	_, errUnknown := f.auth.Login(context.Background(), Credentials{Email: "b@x.com", Password: "secret1"})
	_, errWrong := f.auth.Login(context.Background(), Credentials{Email: "a@x.com", Password: "wrong!!"})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLoginIssuesDayLongToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerApproved(t, "a@x.com", "secret1")

	before := time.Now()
	res, err := f.auth.Login(context.Background(), Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := f.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.WithinDuration(t, before.Add(24*time.Hour), res.ExpiresAt, 2*time.Second)
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.registerApproved(t, "a@x.com", "secret1")

	res, err := f.auth.Login(ctx, Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	got, claims, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, claims.ID)

	_, _, err = f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrTokenRequired)

	_, _, err = f.auth.Authenticate(ctx, res.Token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.users.UpdateStatus(ctx, user.ID, domain.UserStatusRejected)
	require.NoError(t, err)
	_, _, err = f.auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrAccountRejected)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.registerApproved(t, "a@x.com", "secret1")

	short, err := auth.NewTokenManager("test-secret", "", time.Millisecond)
	require.NoError(t, err)
	token, _, err := short.Issue(user.ID)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, _, err = f.auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	token, _, err := f.tokens.Issue(999)
	require.NoError(t, err)

	_, _, err = f.auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.registerApproved(t, "a@x.com", "secret1")

	res, err := f.auth.Login(ctx, Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, res.Token))
	assert.Len(t, f.revoker.revoked, 1)

	_, _, err = f.auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	assert.NoError(t, f.auth.Logout(ctx, ""))
	assert.NoError(t, f.auth.Logout(ctx, "garbage"))
}
