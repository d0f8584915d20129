package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func newUserService(s *store) *UserService {
	return NewUserService(UserDependencies{
		Users:       fakeUsers{s},
		Roles:       fakeRoles{s},
		Departments: fakeDepartments{s},
		Teams:       fakeTeams{s},
		Tx:          &fakeTx{s: s},
		BcryptCost:  bcrypt.MinCost,
	})
}

func newAuthService(s *store, now time.Time) (*AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(AuthDependencies{
		Users:      fakeUsers{s},
		Tokens:     tokens,
		BcryptCost: bcrypt.MinCost,
		Now:        func() time.Time { return now },
	}), tokens
}

func TestCreateUserGrantsDefaultRole(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	users := newUserService(s)

	u, err := users.Create(ctx, CreateUserInput{Email: "dana@example.com", Password: "longenough", FirstName: " Dana ", LastName: "Lee"})
	require.NoError(t, err)
	assert.Equal(t, "Dana", u.FirstName)
	assert.True(t, u.HasRole(domain.RoleUser))
	assert.NotEqual(t, "longenough", u.PasswordHash)
	assert.NoError(t, auth.ComparePassword(u.PasswordHash, "longenough"))

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleUser}, stored.RoleNames())
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	users := newUserService(s)

	_, err := users.Create(ctx, CreateUserInput{Email: "ALICE@example.com", Password: "longenough"})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", apperrors.ToDomainError(err).Message)

	_, err = users.Create(ctx, CreateUserInput{Email: "new@example.com", Password: "short"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = users.Create(ctx, CreateUserInput{Email: "not-an-email", Password: "longenough"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateUserKeepsOwnEmail(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	users := newUserService(s)

	u, err := users.Update(ctx, 1, UpdateUserInput{Email: "alice@example.com", FirstName: "Alicia", LastName: "Smith"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia Smith", u.FullName())

	_, err = users.Update(ctx, 1, UpdateUserInput{Email: "bob@example.com"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = users.Update(ctx, 404, UpdateUserInput{Email: "x@example.com"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRoleGrants(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	users := newUserService(s)

	u, err := users.AssignRole(ctx, 2, RoleGrant{RoleName: "agent", DepartmentID: int64Ptr(1), TeamID: int64Ptr(10)})
	require.NoError(t, err)
	assert.True(t, u.HasRole(domain.RoleAgent))

	_, err = users.AssignRole(ctx, 2, RoleGrant{RoleName: domain.RoleAgent, DepartmentID: int64Ptr(2), TeamID: int64Ptr(10)})
	require.Error(t, err)
	assert.Equal(t, "Invalid team for the selected department", apperrors.ToDomainError(err).Message)

	_, err = users.AssignRole(ctx, 2, RoleGrant{RoleName: "Wizard"})
	assert.True(t, apperrors.IsValidation(err))

	u, err = users.RemoveRole(ctx, 2, domain.RoleAgent)
	require.NoError(t, err)
	assert.False(t, u.HasRole(domain.RoleAgent))

	_, err = users.RemoveRole(ctx, 2, domain.RoleAgent)
	assert.True(t, apperrors.IsValidation(err))
}

func TestDeactivateUser(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	users := newUserService(s)

	require.NoError(t, users.Deactivate(ctx, 3))
	active, err := users.GetActive(ctx)
	require.NoError(t, err)
	for _, u := range active {
		assert.NotEqual(t, int64(3), u.ID)
	}
	assert.True(t, apperrors.IsNotFound(users.Deactivate(ctx, 404)))
}

func seedLoginUser(t *testing.T, s *store, active bool) {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)
	s.users[50] = domain.User{
		ID:           50,
		Email:        "erin@example.com",
		PasswordHash: hash,
		FirstName:    "Erin",
		IsActive:     active,
		Roles:        []domain.UserRole{{UserID: 50, RoleID: 2, RoleName: domain.RoleAgent}},
	}
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	seedLoginUser(t, s, true)
	s.users[51] = domain.User{ID: 51, Email: "inactive@example.com", PasswordHash: s.users[50].PasswordHash, IsActive: false}
	svc, _ := newAuthService(s, time.Now())

	attempts := map[string][2]string{
		"wrong password": {"erin@example.com", "battery-staple"},
		"unknown email":  {"nobody@example.com", "correct-horse"},
		"inactive user":  {"inactive@example.com", "correct-horse"},
	}
	for name, creds := range attempts {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(ctx, creds[0], creds[1])
			require.Error(t, err)
			assert.True(t, apperrors.IsAuthentication(err))
			assert.Equal(t, "Invalid credentials", apperrors.ToDomainError(err).Message)
		})
	}
}

func TestLoginIssuesToken(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	seedLoginUser(t, s, true)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	svc, tokens := newAuthService(s, now)

	result, err := svc.Login(ctx, "ERIN@example.com", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := tokens.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(50), claims.UserID)
	assert.Equal(t, []string{domain.RoleAgent}, claims.Roles)

	require.NotNil(t, s.users[50].LastLogin)
	assert.Equal(t, now, *s.users[50].LastLogin)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	seedLoginUser(t, s, true)
	svc, _ := newAuthService(s, time.Now())

	err := svc.ChangePassword(ctx, 50, "wrong", "new-password")
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", apperrors.ToDomainError(err).Message)

	err = svc.ChangePassword(ctx, 50, "correct-horse", "short")
	assert.True(t, apperrors.IsValidation(err))

	err = svc.ChangePassword(ctx, 404, "correct-horse", "new-password")
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.ChangePassword(ctx, 50, "correct-horse", "new-password"))
	_, err = svc.Login(ctx, "erin@example.com", "new-password")
	assert.NoError(t, err)
}

func TestChangePasswordInactiveUser(t *testing.T) {
	s := newStore()
	seedLoginUser(t, s, false)
	svc, _ := newAuthService(s, time.Now())

	err := svc.ChangePassword(context.Background(), 50, "correct-horse", "new-password")
	assert.True(t, apperrors.IsNotFound(err))
}
