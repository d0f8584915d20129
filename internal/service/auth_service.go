package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const invalidCredentials = "Invalid credentials"

// dummyHash keeps the cost of a failed lookup close to a failed comparison.
var dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BiNBMnZ0wEQu.wlfYm1HtIyQ9i3a"

// AuthDependencies wires AuthService.
type AuthDependencies struct {
	Users      repository.UserRepository
	Tokens     *auth.TokenManager
	BcryptCost int
	Logger     *zap.Logger
	Now        func() time.Time
}

// AuthService coordinates login and password changes.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:      deps.Users,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
		now:        now,
	}
}

// Login authenticates by email and password. Unknown, inactive and wrong-password
// attempts all fail with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, ok, err := exists(s.users.GetByEmail(ctx, email))
	if err != nil {
		return nil, err
	}
	if !activeUser(user, ok) {
		_ = auth.ComparePassword(dummyHash, password)
		s.logger.Info("login rejected", zap.String("reason", "unknown or inactive account"))
		return nil, apperrors.NewAuthenticationError(invalidCredentials)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.Int64("user_id", user.ID), zap.String("reason", "password mismatch"))
		return nil, apperrors.NewAuthenticationError(invalidCredentials)
	}

	at := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, at); err != nil {
		return nil, apperrors.MapError(err)
	}
	user.LastLogin = &at

	token, exp, err := s.tokens.GenerateToken(user.ID, user.RoleNames())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return &domain.AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, ok, err := exists(s.users.GetByID(ctx, userID))
	if err != nil {
		return err
	}
	if !activeUser(user, ok) {
		return apperrors.NewNotFound("user", map[string]any{"id": userID})
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("Current password is incorrect", nil)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return notFoundOr(err, "user", userID)
	}
	s.logger.Info("password changed", zap.Int64("user_id", userID))
	return nil
}
