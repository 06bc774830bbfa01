package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mosswell/inkwell/internal/auth"
	"github.com/mosswell/inkwell/internal/models"
	pkgauth "github.com/mosswell/inkwell/pkg/auth"
	pkglogger "github.com/mosswell/inkwell/pkg/logger"
)

// UserRepository defines the account lookups the auth service needs.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthService handles authentication business logic: the login throttle
// guard wraps credential verification, and success mints a session token.
type AuthService struct {
	repo     UserRepository
	guard    *auth.LockoutGuard
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, guard *auth.LockoutGuard, sessions *auth.SessionManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		guard:    guard,
		sessions: sessions,
		logger:   logger,
	}
}

// UserResponse represents an account in HTTP responses. The password hash
// is never part of any response or log line.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string
	User  *UserResponse
}

// Login authenticates an account and issues a session token.
//
// Order matters: the lockout check runs before any credential work, every
// verification failure feeds the guard (which also imposes the growing
// response delay), and success clears the guard. An unknown email and a
// wrong password produce the same ErrInvalidCredentials so accounts cannot
// be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	if locked, remaining := s.guard.Check(email); locked {
		s.logger.Info("login rejected: account locked",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Duration("remaining", remaining))
		return nil, &models.LockedError{RetryAfter: remaining}
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.guard.RecordFailure(ctx, email)
			s.logger.Info("login failed: invalid credentials",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.guard.RecordFailure(ctx, email)
		s.logger.Info("login failed: invalid credentials",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		return nil, models.ErrInvalidCredentials
	}

	s.guard.Clear(email)

	token, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &LoginResult{
		Token: token,
		User: &UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	}, nil
}

// ChangePassword verifies the current password and replaces the stored hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to get user for password change", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		s.logger.Info("password change rejected: current password mismatch",
			slog.String("user_id", user.ID))
		return models.ErrInvalidCredentials
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.String("user_id", user.ID))
	return nil
}
