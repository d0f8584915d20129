package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// CreateUserInput carries a new account.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateUserInput replaces profile fields. Passwords change via AuthService.
type UpdateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	IsActive  *bool
}

// RoleGrant names a role and its optional scope.
type RoleGrant struct {
	RoleName     string
	DepartmentID *int64
	TeamID       *int64
}

// UserDependencies wires UserService.
type UserDependencies struct {
	Users       repository.UserRepository
	Roles       repository.RoleRepository
	Departments repository.DepartmentRepository
	Teams       repository.TeamRepository
	Tx          TxRunner
	BcryptCost  int
	Logger      *zap.Logger
}

// UserService manages accounts and role grants.
type UserService struct {
	users       repository.UserRepository
	roles       repository.RoleRepository
	departments repository.DepartmentRepository
	teams       repository.TeamRepository
	tx          TxRunner
	bcryptCost  int
	logger      *zap.Logger
}

func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:       deps.Users,
		roles:       deps.Roles,
		departments: deps.Departments,
		teams:       deps.Teams,
		tx:          deps.Tx,
		bcryptCost:  deps.BcryptCost,
		logger:      logger,
	}
}

// Create registers the account and grants the default User role in one transaction.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email, err := s.availableEmail(ctx, input.Email, 0)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		IsActive:     true,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		role, err := s.roles.GetByName(ctx, domain.RoleUser)
		if err != nil {
			return err
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		grant := domain.UserRole{UserID: user.ID, RoleID: role.ID, RoleName: role.Name}
		if err := s.users.AddRole(ctx, &grant); err != nil {
			return err
		}
		user.Roles = []domain.UserRole{grant}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	email, err := s.availableEmail(ctx, input.Email, id)
	if err != nil {
		return nil, err
	}
	user.Email = email
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return user, nil
}

func (s *UserService) GetAll(ctx context.Context) ([]domain.User, error) {
	list, err := s.users.List(ctx, false)
	return list, apperrors.MapError(err)
}

func (s *UserService) GetActive(ctx context.Context) ([]domain.User, error) {
	list, err := s.users.List(ctx, true)
	return list, apperrors.MapError(err)
}

func (s *UserService) GetRoles(ctx context.Context) ([]domain.Role, error) {
	list, err := s.roles.List(ctx)
	return list, apperrors.MapError(err)
}

func (s *UserService) Deactivate(ctx context.Context, id int64) error {
	if err := s.users.SetActive(ctx, id, false); err != nil {
		return notFoundOr(err, "user", id)
	}
	s.logger.Info("user deactivated", zap.Int64("user_id", id))
	return nil
}

// AssignRole grants a role, optionally scoped to a department or team.
// A team scope must belong to the given department when both are set.
func (s *UserService) AssignRole(ctx context.Context, userID int64, grant RoleGrant) (*domain.User, error) {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	role, err := s.role(ctx, grant.RoleName)
	if err != nil {
		return nil, err
	}
	if grant.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *grant.DepartmentID); err != nil {
			return nil, notFoundOr(err, "department", *grant.DepartmentID)
		}
	}
	if grant.TeamID != nil {
		team, err := s.teams.GetByID(ctx, *grant.TeamID)
		if err != nil {
			return nil, notFoundOr(err, "team", *grant.TeamID)
		}
		if grant.DepartmentID != nil && team.DepartmentID != *grant.DepartmentID {
			return nil, apperrors.NewValidationError("Invalid team for the selected department", map[string]any{"team_id": team.ID})
		}
	}

	ur := &domain.UserRole{
		UserID:       userID,
		RoleID:       role.ID,
		RoleName:     role.Name,
		DepartmentID: grant.DepartmentID,
		TeamID:       grant.TeamID,
	}
	if err := s.users.AddRole(ctx, ur); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("role assigned", zap.Int64("user_id", userID), zap.String("role", role.Name))
	return s.GetByID(ctx, userID)
}

func (s *UserService) RemoveRole(ctx context.Context, userID int64, roleName string) (*domain.User, error) {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	role, err := s.role(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if err := s.users.RemoveRole(ctx, userID, role.ID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewValidationError("User does not hold this role", map[string]any{"role": role.Name})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("role removed", zap.Int64("user_id", userID), zap.String("role", role.Name))
	return s.GetByID(ctx, userID)
}

func (s *UserService) role(ctx context.Context, name string) (*domain.Role, error) {
	role, ok, err := exists(s.roles.GetByName(ctx, strings.TrimSpace(name)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewValidationError("Unknown role", map[string]any{"role": name})
	}
	return role, nil
}

func (s *UserService) availableEmail(ctx context.Context, raw string, excludeID int64) (string, error) {
	email := strings.TrimSpace(raw)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", apperrors.NewValidationError("A valid email is required", map[string]any{"field": "email"})
	}
	taken, err := s.users.EmailExists(ctx, email, excludeID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if taken {
		return "", apperrors.NewValidationError("Email already registered", map[string]any{"email": email})
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < auth.MinPasswordLength {
		return apperrors.NewValidationError("Password must be at least 8 characters", map[string]any{"min_length": auth.MinPasswordLength})
	}
	return nil
}
