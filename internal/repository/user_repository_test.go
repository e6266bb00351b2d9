package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
)

var userCols = []string{"id", "email", "password_hash", "status", "role", "created_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("a@x.com", "hash", "pending", "user").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &domain.User{
		Email:        "a@x.com",
		PasswordHash: "hash",
		Status:       domain.UserStatusPending,
		Role:         domain.RoleUser,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserReturnsGeneratedFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db, nil)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	user := &domain.User{Email: "a@x.com", PasswordHash: "hash", Status: domain.UserStatusPending, Role: domain.RoleUser}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, now, user.CreatedAt)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUsersByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db, nil)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE status = $1 ORDER BY created_at DESC, id DESC`)).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(2, "b@x.com", "h", "pending", "user", now, now).
			AddRow(1, "a@x.com", "h", "pending", "user", now, now))

	status := domain.UserStatusPending
	users, err := repo.List(context.Background(), &status)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b@x.com", users[0].Email)
	assert.Equal(t, domain.UserStatusPending, users[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db, nil)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs("approved", int64(3)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "c@x.com", "h", "approved", "user", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs("approved", int64(4)).
		WillReturnError(sql.ErrNoRows)

	user, err := repo.UpdateStatus(context.Background(), 3, domain.UserStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusApproved, user.Status)

	_, err = repo.UpdateStatus(context.Background(), 4, domain.UserStatusApproved)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProjectsByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresProjectRepository(db, nil)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "description", "created_at"}).
			AddRow(1, 5, "P1", nil, now).
			AddRow(2, 5, "P2", "second", now))

	projects, err := repo.ListByUser(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Nil(t, projects[0].Description)
	require.NotNil(t, projects[1].Description)
	assert.Equal(t, "second", *projects[1].Description)
}

func TestGetProjectNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresProjectRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM projects`)).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
