package repository

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// CategoryRepository persists ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.TicketCategory) error
	Update(ctx context.Context, c *domain.TicketCategory) error
	GetByID(ctx context.Context, id int64) (*domain.TicketCategory, error)
	List(ctx context.Context, activeOnly bool) ([]domain.TicketCategory, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// PriorityRepository persists ticket priorities.
type PriorityRepository interface {
	Create(ctx context.Context, p *domain.TicketPriority) error
	Update(ctx context.Context, p *domain.TicketPriority) error
	GetByID(ctx context.Context, id int64) (*domain.TicketPriority, error)
	List(ctx context.Context) ([]domain.TicketPriority, error)
	ListOrderedByName(ctx context.Context) ([]domain.TicketPriority, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// StatusRepository persists workflow statuses.
type StatusRepository interface {
	Create(ctx context.Context, s *domain.TicketStatus) error
	Update(ctx context.Context, s *domain.TicketStatus) error
	GetByID(ctx context.Context, id int64) (*domain.TicketStatus, error)
	List(ctx context.Context) ([]domain.TicketStatus, error)
	ListOrderedByName(ctx context.Context) ([]domain.TicketStatus, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

var (
	categoryColumns = []string{"id", "name", "description", "is_active", "created_at"}
	priorityColumns = []string{"id", "name", "description", "level", "created_at"}
	statusColumns   = []string{"id", "name", "description", "is_terminal", "color", "created_at"}
)

type categoryRepository struct{ base }

func NewCategoryRepository(db persistence.Querier) CategoryRepository {
	return &categoryRepository{base{db: db}}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.TicketCategory) error {
	stmt := psql.Insert("ticket_categories").
		Columns("name", "description", "is_active").
		Values(c.Name, c.Description, c.IsActive).
		Suffix("RETURNING id, created_at")
	return insertReturning(ctx, r.q(ctx), stmt, &c.ID, &c.CreatedAt)
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.TicketCategory) error {
	stmt := psql.Update("ticket_categories").
		Set("name", c.Name).
		Set("description", c.Description).
		Set("is_active", c.IsActive).
		Where(squirrel.Eq{"id": c.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.TicketCategory, error) {
	stmt := psql.Select(categoryColumns...).From("ticket_categories").Where(squirrel.Eq{"id": id})
	return getOne[domain.TicketCategory](ctx, r.q(ctx), stmt)
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.TicketCategory, error) {
	stmt := psql.Select(categoryColumns...).From("ticket_categories").OrderBy("name")
	if activeOnly {
		stmt = stmt.Where(squirrel.Eq{"is_active": true})
	}
	return selectAll[domain.TicketCategory](ctx, r.q(ctx), stmt)
}

func (r *categoryRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, r.q(ctx), "ticket_categories", name, excludeID, nil)
}

func (r *categoryRepository) SetActive(ctx context.Context, id int64, active bool) error {
	stmt := psql.Update("ticket_categories").Set("is_active", active).Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}

type priorityRepository struct{ base }

func NewPriorityRepository(db persistence.Querier) PriorityRepository {
	return &priorityRepository{base{db: db}}
}

func (r *priorityRepository) Create(ctx context.Context, p *domain.TicketPriority) error {
	stmt := psql.Insert("ticket_priorities").
		Columns("name", "description", "level").
		Values(p.Name, p.Description, p.Level).
		Suffix("RETURNING id, created_at")
	return insertReturning(ctx, r.q(ctx), stmt, &p.ID, &p.CreatedAt)
}

func (r *priorityRepository) Update(ctx context.Context, p *domain.TicketPriority) error {
	stmt := psql.Update("ticket_priorities").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("level", p.Level).
		Where(squirrel.Eq{"id": p.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *priorityRepository) GetByID(ctx context.Context, id int64) (*domain.TicketPriority, error) {
	stmt := psql.Select(priorityColumns...).From("ticket_priorities").Where(squirrel.Eq{"id": id})
	return getOne[domain.TicketPriority](ctx, r.q(ctx), stmt)
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.TicketPriority, error) {
	stmt := psql.Select(priorityColumns...).From("ticket_priorities").OrderBy("level", "id")
	return selectAll[domain.TicketPriority](ctx, r.q(ctx), stmt)
}

func (r *priorityRepository) ListOrderedByName(ctx context.Context) ([]domain.TicketPriority, error) {
	stmt := psql.Select(priorityColumns...).From("ticket_priorities").OrderBy("name")
	return selectAll[domain.TicketPriority](ctx, r.q(ctx), stmt)
}

func (r *priorityRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, r.q(ctx), "ticket_priorities", name, excludeID, nil)
}

func (r *priorityRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.q(ctx), psql.Delete("ticket_priorities").Where(squirrel.Eq{"id": id}))
}

type statusRepository struct{ base }

func NewStatusRepository(db persistence.Querier) StatusRepository {
	return &statusRepository{base{db: db}}
}

func (r *statusRepository) Create(ctx context.Context, s *domain.TicketStatus) error {
	stmt := psql.Insert("ticket_statuses").
		Columns("name", "description", "is_terminal", "color").
		Values(s.Name, s.Description, s.IsTerminal, s.Color).
		Suffix("RETURNING id, created_at")
	return insertReturning(ctx, r.q(ctx), stmt, &s.ID, &s.CreatedAt)
}

func (r *statusRepository) Update(ctx context.Context, s *domain.TicketStatus) error {
	stmt := psql.Update("ticket_statuses").
		Set("name", s.Name).
		Set("description", s.Description).
		Set("is_terminal", s.IsTerminal).
		Set("color", s.Color).
		Where(squirrel.Eq{"id": s.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.TicketStatus, error) {
	stmt := psql.Select(statusColumns...).From("ticket_statuses").Where(squirrel.Eq{"id": id})
	return getOne[domain.TicketStatus](ctx, r.q(ctx), stmt)
}

func (r *statusRepository) List(ctx context.Context) ([]domain.TicketStatus, error) {
	stmt := psql.Select(statusColumns...).From("ticket_statuses").OrderBy("id")
	return selectAll[domain.TicketStatus](ctx, r.q(ctx), stmt)
}

func (r *statusRepository) ListOrderedByName(ctx context.Context) ([]domain.TicketStatus, error) {
	stmt := psql.Select(statusColumns...).From("ticket_statuses").OrderBy("name")
	return selectAll[domain.TicketStatus](ctx, r.q(ctx), stmt)
}

func (r *statusRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, r.q(ctx), "ticket_statuses", name, excludeID, nil)
}

func (r *statusRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.q(ctx), psql.Delete("ticket_statuses").Where(squirrel.Eq{"id": id}))
}
