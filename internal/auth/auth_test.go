package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, exp, err := tm.GenerateToken(42, []string{domain.RoleAgent})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, []string{domain.RoleAgent}, claims.Roles)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenRejectsExpiredAndForeign(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken(1, nil)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(token)
	assert.Error(t, err)

	other := NewTokenManager("other", time.Minute)
	fresh, _, err := other.GenerateToken(1, nil)
	require.NoError(t, err)
	_, err = tm.ParseToken(fresh)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "battery staple"))
}

func TestAuthorizerPolicies(t *testing.T) {
	authz, err := NewAuthorizer(DefaultPolicies)
	require.NoError(t, err)

	cases := []struct {
		roles    []string
		resource string
		action   string
		want     bool
	}{
		{[]string{domain.RoleAdmin}, ResourceUsers, ActionDelete, true},
		{[]string{domain.RoleAgent}, ResourceComments, ActionInternal, true},
		{[]string{domain.RoleAgent}, ResourceReference, ActionWrite, false},
		{[]string{domain.RoleUser}, ResourceComments, ActionInternal, false},
		{[]string{domain.RoleUser}, ResourceTickets, ActionReadAll, false},
		{[]string{domain.RoleUser, domain.RoleAgent}, ResourceTickets, ActionReadAll, true},
		{nil, ResourceFAQ, ActionRead, false},
	}
	for _, tc := range cases {
		got, err := authz.Allowed(tc.roles, tc.resource, tc.action)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%v %s:%s", tc.roles, tc.resource, tc.action)
	}
}

type stubUsers struct {
	repository.UserRepository
	users map[int64]*domain.User
}

func (s stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func newTestApp(t *testing.T, tm *TokenManager, users stubUsers) *fiber.App {
	t.Helper()
	authz, err := NewAuthorizer(DefaultPolicies)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm, users)
	app.Get("/internal", mw.Handle, Require(authz, ResourceComments, ActionInternal), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.Email)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	users := stubUsers{users: map[int64]*domain.User{
		1: {ID: 1, Email: "agent@example.com", IsActive: true, Roles: []domain.UserRole{{RoleName: domain.RoleAgent}}},
		2: {ID: 2, Email: "user@example.com", IsActive: true, Roles: []domain.UserRole{{RoleName: domain.RoleUser}}},
		3: {ID: 3, Email: "gone@example.com", IsActive: false},
	}}
	app := newTestApp(t, tm, users)

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/internal", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}
	bearer := func(id int64) string {
		tok, _, err := tm.GenerateToken(id, nil)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("Basic abc"))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer not-a-jwt"))
	assert.Equal(t, http.StatusOK, call(bearer(1)))
	assert.Equal(t, http.StatusForbidden, call(bearer(2)))
	assert.Equal(t, http.StatusUnauthorized, call(bearer(3)))
	assert.Equal(t, http.StatusUnauthorized, call(bearer(99)))
}
