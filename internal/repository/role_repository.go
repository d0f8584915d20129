package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// RoleRepository reads the seeded role catalogue.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

type roleRepository struct {
	base
}

func NewRoleRepository(db persistence.Querier) RoleRepository {
	return &roleRepository{base{db: db}}
}

// GetByName matches case-insensitively.
func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	stmt := psql.Select("id", "name").From("roles").Where("LOWER(name) = LOWER(?)", name)
	return getOne[domain.Role](ctx, r.q(ctx), stmt)
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	return selectAll[domain.Role](ctx, r.q(ctx), psql.Select("id", "name").From("roles").OrderBy("id"))
}
