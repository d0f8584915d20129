package repository

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// TeamRepository manages team persistence.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id int64) (*domain.Team, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Team, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Team, error)
	// NameExists is scoped to one department.
	NameExists(ctx context.Context, departmentID int64, name string, excludeID int64) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type teamRepository struct {
	base
}

var teamColumns = []string{"id", "department_id", "name", "description", "is_active", "created_at", "updated_at"}

// NewTeamRepository creates a repository.
func NewTeamRepository(db persistence.Querier) TeamRepository {
	return &teamRepository{base{db: db}}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	stmt := psql.Insert("teams").
		Columns("department_id", "name", "description", "is_active").
		Values(team.DepartmentID, team.Name, team.Description, team.IsActive).
		Suffix("RETURNING id, created_at, updated_at")
	return insertReturning(ctx, r.q(ctx), stmt, &team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	stmt := psql.Update("teams").
		Set("department_id", team.DepartmentID).
		Set("name", team.Name).
		Set("description", team.Description).
		Set("is_active", team.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": team.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *teamRepository) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	stmt := psql.Select(teamColumns...).From("teams").Where(squirrel.Eq{"id": id})
	return getOne[domain.Team](ctx, r.q(ctx), stmt)
}

func (r *teamRepository) List(ctx context.Context, activeOnly bool) ([]domain.Team, error) {
	stmt := psql.Select(teamColumns...).From("teams").OrderBy("name")
	if activeOnly {
		stmt = stmt.Where(squirrel.Eq{"is_active": true})
	}
	return selectAll[domain.Team](ctx, r.q(ctx), stmt)
}

func (r *teamRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Team, error) {
	stmt := psql.Select(teamColumns...).From("teams").
		Where(squirrel.Eq{"department_id": departmentID}).
		OrderBy("name")
	return selectAll[domain.Team](ctx, r.q(ctx), stmt)
}

func (r *teamRepository) NameExists(ctx context.Context, departmentID int64, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, r.q(ctx), "teams", name, excludeID, squirrel.Eq{"department_id": departmentID})
}

func (r *teamRepository) SetActive(ctx context.Context, id int64, active bool) error {
	stmt := psql.Update("teams").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}
