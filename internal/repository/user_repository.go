package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// UserRepository defines persistence access for accounts and their role grants.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, activeOnly bool) ([]domain.User, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	AddRole(ctx context.Context, role *domain.UserRole) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
}

type userRepository struct {
	base
}

var userColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "is_active", "created_at", "last_login"}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db persistence.Querier) UserRepository {
	return &userRepository{base{db: db}}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	stmt := psql.Insert("users").
		Columns("email", "password_hash", "first_name", "last_name", "is_active").
		Values(user.Email, user.PasswordHash, user.FirstName, user.LastName, user.IsActive).
		Suffix("RETURNING id, created_at")
	return insertReturning(ctx, r.q(ctx), stmt, &user.ID, &user.CreatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	stmt := psql.Update("users").
		Set("email", user.Email).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("is_active", user.IsActive).
		Where(squirrel.Eq{"id": user.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

// GetByID loads the user with its role grants.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail matches case-insensitively and loads role grants.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email))
}

func (r *userRepository) getOne(ctx context.Context, pred squirrel.Sqlizer) (*domain.User, error) {
	q := r.q(ctx)
	user, err := getOne[domain.User](ctx, q, psql.Select(userColumns...).From("users").Where(pred))
	if err != nil {
		return nil, err
	}
	roles, err := listRoles(ctx, q, []int64{user.ID})
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

func (r *userRepository) List(ctx context.Context, activeOnly bool) ([]domain.User, error) {
	q := r.q(ctx)
	stmt := psql.Select(userColumns...).From("users").OrderBy("last_name", "first_name", "id")
	if activeOnly {
		stmt = stmt.Where(squirrel.Eq{"is_active": true})
	}
	users, err := selectAll[domain.User](ctx, q, stmt)
	if err != nil || len(users) == 0 {
		return users, err
	}

	ids := make([]int64, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	roles, err := listRoles(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	byUser := make(map[int64][]domain.UserRole, len(users))
	for _, role := range roles {
		byUser[role.UserID] = append(byUser[role.UserID], role)
	}
	for i := range users {
		users[i].Roles = byUser[users[i].ID]
	}
	return users, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	sub := psql.Select("1").From("users").
		Where("LOWER(email) = LOWER(?)", email).
		Where(squirrel.NotEq{"id": excludeID})
	return scalar[bool](ctx, r.q(ctx), sub.Prefix("SELECT EXISTS (").Suffix(")"))
}

func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) error {
	stmt := psql.Update("users").Set("is_active", active).Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	stmt := psql.Update("users").Set("password_hash", hash).Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	stmt := psql.Update("users").Set("last_login", at).Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}

// AddRole is idempotent for an identical grant.
func (r *userRepository) AddRole(ctx context.Context, role *domain.UserRole) error {
	stmt := psql.Insert("user_roles").
		Columns("user_id", "role_id", "department_id", "team_id").
		Values(role.UserID, role.RoleID, role.DepartmentID, role.TeamID).
		Suffix("ON CONFLICT DO NOTHING")
	sql, args, err := stmt.ToSql()
	if err != nil {
		return err
	}
	_, err = r.q(ctx).Exec(ctx, sql, args...)
	return err
}

// RemoveRole drops every grant of roleID held by the user.
func (r *userRepository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	stmt := psql.Delete("user_roles").Where(squirrel.Eq{"user_id": userID, "role_id": roleID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func listRoles(ctx context.Context, q persistence.Querier, userIDs []int64) ([]domain.UserRole, error) {
	stmt := psql.Select("ur.user_id", "ur.role_id", "r.name AS role_name", "ur.department_id", "ur.team_id").
		From("user_roles ur").
		Join("roles r ON r.id = ur.role_id").
		Where(squirrel.Eq{"ur.user_id": userIDs}).
		OrderBy("ur.user_id", "r.name")
	return selectAll[domain.UserRole](ctx, q, stmt)
}
