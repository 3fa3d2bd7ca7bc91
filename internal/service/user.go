package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ironabhi05/scatch-backend/internal/auth"
	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/internal/event"
	"github.com/ironabhi05/scatch-backend/internal/repository"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// UserService implements registration, login, and the OTP-based password
// reset flow for both customer and admin accounts.
type UserService struct {
	users      repository.UserRepository
	jwtManager *auth.JWTManager
	producer   *event.Producer
	otpTTL     time.Duration
	logger     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	otpTTL time.Duration,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:      users,
		jwtManager: jwtManager,
		producer:   producer,
		otpTTL:     otpTTL,
		logger:     logger,
	}
}

// RegisterInput holds the parameters for registering a new account.
type RegisterInput struct {
	Fullname string
	Email    string
	Password string
	Contact  string
}

// LoginInput holds the parameters for a login attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a customer account, hashes the password, and returns the
// user with a session token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	return s.register(ctx, input, domain.RoleUser)
}

// RegisterAdmin creates an admin account. The handler restricts who may call
// this.
func (s *UserService) RegisterAdmin(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	return s.register(ctx, input, domain.RoleAdmin)
}

func (s *UserService) register(ctx context.Context, input RegisterInput, role string) (*domain.User, string, error) {
	if input.Fullname == "" {
		return nil, "", apperrors.InvalidInput("fullname is required")
	}
	if input.Email == "" {
		return nil, "", apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Fullname:     input.Fullname,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Contact:      input.Contact,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtManager.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", user.Role),
	)

	return user, token, nil
}

// Login authenticates a user with email and password and returns a session
// token.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	user, err := s.authenticate(ctx, input)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, token, nil
}

// OwnerLogin authenticates an admin account. Non-admin credentials are
// rejected even when the password is correct.
func (s *UserService) OwnerLogin(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	user, err := s.authenticate(ctx, input)
	if err != nil {
		return nil, "", err
	}

	if !user.IsAdmin() {
		return nil, "", apperrors.Forbidden("You do not have permission to perform this action")
	}

	token, err := s.jwtManager.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "owner logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, token, nil
}

func (s *UserService) authenticate(ctx context.Context, input LoginInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ForgotPassword issues a one-time code for the account and hands it to the
// notification pipeline. Unknown emails get the same response as known ones.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists.
		s.logger.InfoContext(ctx, "password reset requested for unknown email",
			slog.String("email", email),
		)
		return nil
	}

	code, hash, err := auth.GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.otpTTL).Unix()
	if err := s.users.SetOTP(ctx, user.ID, hash, expiresAt); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.producer.PublishPasswordOTPIssued(ctx, user.ID, user.Email, code, expiresAt); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_otp_issued event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset otp issued",
		slog.String("user_id", user.ID),
	)

	return nil
}

// VerifyOTP checks a one-time code against the stored hash without consuming
// it.
func (s *UserService) VerifyOTP(ctx context.Context, email, code string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}
	if code == "" {
		return apperrors.InvalidInput("otp is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.Unauthorized("Invalid or expired OTP")
	}

	if err := s.checkOTP(user, code); err != nil {
		return err
	}

	return nil
}

// ResetPassword sets a new password after validating the one-time code. The
// code is consumed on success.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}
	if code == "" {
		return apperrors.InvalidInput("otp is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.Unauthorized("Invalid or expired OTP")
	}

	if err := s.checkOTP(user, code); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("user_id", user.ID),
	)

	return nil
}

func (s *UserService) checkOTP(user *domain.User, code string) error {
	if user.OTPHash == "" || user.OTPExpiresAt == nil {
		return apperrors.Unauthorized("Invalid or expired OTP")
	}
	if time.Now().UTC().After(*user.OTPExpiresAt) {
		return apperrors.Unauthorized("Invalid or expired OTP")
	}
	if !auth.VerifyOTP(code, user.OTPHash) {
		return apperrors.Unauthorized("Invalid or expired OTP")
	}
	return nil
}

// validatePassword checks that the password meets minimum complexity
// requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
