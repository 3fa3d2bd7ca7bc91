package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ironabhi05/scatch-backend/internal/auth"
	"github.com/ironabhi05/scatch-backend/internal/domain"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

func newUserTestService(users *mockUserRepository) *UserService {
	jwtManager := auth.NewJWTManager("test-secret-key-for-unit-tests-only", time.Hour)
	return NewUserService(users, jwtManager, newTestProducer(), 10*time.Minute, newTestLogger())
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	// Cost 4 keeps the test fast; production uses a higher cost.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister_Success(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, token, err := svc.Register(ctx, RegisterInput{
		Fullname: "John Doe",
		Email:    "john@example.com",
		Password: "Str0ngPass",
		Contact:  "5551234567",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "john@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, token)

	// The stored hash must verify against the original password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Str0ngPass")))

	users.AssertExpectations(t)
}

func TestRegisterAdmin_Success(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, token, err := svc.RegisterAdmin(ctx, RegisterInput{
		Fullname: "Jane Admin",
		Email:    "admin@example.com",
		Password: "Str0ngPass",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NotEmpty(t, token)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newUserTestService(new(mockUserRepository))

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1"},
		{"no uppercase", "weakpass1"},
		{"no lowercase", "WEAKPASS1"},
		{"no digit", "WeakPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), RegisterInput{
				Fullname: "John Doe",
				Email:    "john@example.com",
				Password: tt.password,
			})
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "john@example.com"))

	user, token, err := svc.Register(ctx, RegisterInput{
		Fullname: "John Doe",
		Email:    "john@example.com",
		Password: "Str0ngPass",
	})

	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "user-123",
		Email:        "john@example.com",
		PasswordHash: hashPassword(t, "Str0ngPass"),
		Role:         domain.RoleUser,
	}
	users.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

	user, token, err := svc.Login(ctx, LoginInput{
		Email:    "john@example.com",
		Password: "Str0ngPass",
	})

	require.NoError(t, err)
	assert.Equal(t, "user-123", user.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "user-123",
		Email:        "john@example.com",
		PasswordHash: hashPassword(t, "Str0ngPass"),
	}
	users.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

	user, token, err := svc.Login(ctx, LoginInput{
		Email:    "john@example.com",
		Password: "WrongPass1",
	})

	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "nobody@example.com").
		Return(nil, apperrors.NotFound("user", "nobody@example.com"))

	user, token, err := svc.Login(ctx, LoginInput{
		Email:    "nobody@example.com",
		Password: "Str0ngPass",
	})

	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestOwnerLogin_RejectsNonAdmin(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "user-123",
		Email:        "john@example.com",
		PasswordHash: hashPassword(t, "Str0ngPass"),
		Role:         domain.RoleUser,
	}
	users.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

	user, token, err := svc.OwnerLogin(ctx, LoginInput{
		Email:    "john@example.com",
		Password: "Str0ngPass",
	})

	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestOwnerLogin_AdminSucceeds(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	stored := &domain.User{
		ID:           "admin-1",
		Email:        "admin@example.com",
		PasswordHash: hashPassword(t, "Str0ngPass"),
		Role:         domain.RoleAdmin,
	}
	users.On("GetByEmail", ctx, "admin@example.com").Return(stored, nil)

	user, token, err := svc.OwnerLogin(ctx, LoginInput{
		Email:    "admin@example.com",
		Password: "Str0ngPass",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NotEmpty(t, token)
}

func TestForgotPassword_IssuesOTP(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	stored := &domain.User{ID: "user-123", Email: "john@example.com"}
	users.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)
	users.On("SetOTP", ctx, "user-123", mock.AnythingOfType("string"), mock.AnythingOfType("int64")).Return(nil)

	err := svc.ForgotPassword(ctx, "john@example.com")

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "nobody@example.com").
		Return(nil, apperrors.NotFound("user", "nobody@example.com"))

	err := svc.ForgotPassword(ctx, "nobody@example.com")

	require.NoError(t, err)
	users.AssertNotCalled(t, "SetOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func otpUser(t *testing.T, code string, expiresIn time.Duration) *domain.User {
	t.Helper()
	expiry := time.Now().UTC().Add(expiresIn)
	return &domain.User{
		ID:           "user-123",
		Email:        "john@example.com",
		OTPHash:      auth.HashOTP(code),
		OTPExpiresAt: &expiry,
	}
}

func TestVerifyOTP_Success(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "john@example.com").Return(otpUser(t, "123456", 5*time.Minute), nil)

	err := svc.VerifyOTP(ctx, "john@example.com", "123456")

	require.NoError(t, err)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "john@example.com").Return(otpUser(t, "123456", 5*time.Minute), nil)

	err := svc.VerifyOTP(ctx, "john@example.com", "654321")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyOTP_Expired(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "john@example.com").Return(otpUser(t, "123456", -time.Minute), nil)

	err := svc.VerifyOTP(ctx, "john@example.com", "123456")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyOTP_NoneIssued(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	stored := &domain.User{ID: "user-123", Email: "john@example.com"}
	users.On("GetByEmail", ctx, "john@example.com").Return(stored, nil)

	err := svc.VerifyOTP(ctx, "john@example.com", "123456")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestResetPassword_Success(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "john@example.com").Return(otpUser(t, "123456", 5*time.Minute), nil)
	users.On("UpdatePassword", ctx, "user-123", mock.AnythingOfType("string")).Return(nil)

	err := svc.ResetPassword(ctx, "john@example.com", "123456", "NewStr0ngPass")

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestResetPassword_WrongCode(t *testing.T) {
	users := new(mockUserRepository)
	svc := newUserTestService(users)
	ctx := context.Background()

	users.On("GetByEmail", ctx, "john@example.com").Return(otpUser(t, "123456", 5*time.Minute), nil)

	err := svc.ResetPassword(ctx, "john@example.com", "000000", "NewStr0ngPass")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_WeakNewPassword(t *testing.T) {
	svc := newUserTestService(new(mockUserRepository))

	err := svc.ResetPassword(context.Background(), "john@example.com", "123456", "weak")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
