package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/pkg/database"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

func newUserRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewUserRepository(mock), mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           "user-001",
		Fullname:     "Abhi Kumar",
		Email:        "abhi@example.com",
		PasswordHash: "$2a$12$hash",
		Contact:      "555",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRows(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "fullname", "email", "password_hash", "contact", "role",
		"otp_hash", "otp_expires_at", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.Fullname, u.Email, u.PasswordHash, u.Contact, u.Role,
		nil, nil, u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepository_Create_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Fullname, u.Email, u.PasswordHash, u.Contact, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Fullname, u.Email, u.PasswordHash, u.Contact, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	u := sampleUser()

	mock.ExpectQuery("SELECT").
		WithArgs(u.Email).
		WillReturnRows(userRows(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Fullname, got.Fullname)
	assert.Empty(t, got.OTPHash)
	assert.Nil(t, got.OTPExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	u := sampleUser()

	mock.ExpectQuery("SELECT").
		WithArgs(u.ID).
		WillReturnRows(userRows(u))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetOTP_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("otphash", pgxmock.AnyArg(), pgxmock.AnyArg(), "user-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetOTP(context.Background(), "user-001", "otphash", time.Now().Add(10*time.Minute).Unix())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetOTP_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("otphash", pgxmock.AnyArg(), pgxmock.AnyArg(), "nonexistent").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetOTP(context.Background(), "nonexistent", "otphash", time.Now().Unix())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("$2a$12$newhash", pgxmock.AnyArg(), "user-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePassword(context.Background(), "user-001", "$2a$12$newhash")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_ExecError(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("$2a$12$newhash", pgxmock.AnyArg(), "user-001").
		WillReturnError(errors.New("write conflict"))

	err := repo.UpdatePassword(context.Background(), "user-001", "$2a$12$newhash")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
