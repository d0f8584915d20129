package repository

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Department, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type departmentRepository struct {
	base
}

var departmentColumns = []string{"id", "name", "description", "is_active", "created_at", "updated_at"}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(db persistence.Querier) DepartmentRepository {
	return &departmentRepository{base{db: db}}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	stmt := psql.Insert("departments").
		Columns("name", "description", "is_active").
		Values(dept.Name, dept.Description, dept.IsActive).
		Suffix("RETURNING id, created_at, updated_at")
	return insertReturning(ctx, r.q(ctx), stmt, &dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	stmt := psql.Update("departments").
		Set("name", dept.Name).
		Set("description", dept.Description).
		Set("is_active", dept.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": dept.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	stmt := psql.Select(departmentColumns...).From("departments").Where(squirrel.Eq{"id": id})
	return getOne[domain.Department](ctx, r.q(ctx), stmt)
}

func (r *departmentRepository) List(ctx context.Context, activeOnly bool) ([]domain.Department, error) {
	stmt := psql.Select(departmentColumns...).From("departments").OrderBy("name")
	if activeOnly {
		stmt = stmt.Where(squirrel.Eq{"is_active": true})
	}
	return selectAll[domain.Department](ctx, r.q(ctx), stmt)
}

func (r *departmentRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, r.q(ctx), "departments", name, excludeID, nil)
}

func (r *departmentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	stmt := psql.Update("departments").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}
