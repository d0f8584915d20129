package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// TicketFilter narrows ticket listings. Nil fields are ignored.
type TicketFilter struct {
	CreatedByID  *int64
	AssignedToID *int64
	DepartmentID *int64
	TeamID       *int64
	StatusID     *int64
	PriorityID   *int64
	CategoryID   *int64
	ActiveOnly   bool
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetDetails(ctx context.Context, id int64) (*domain.TicketDetails, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.TicketDetails, error)
	Count(ctx context.Context, filter TicketFilter) (int64, error)
	CountByStatus(ctx context.Context) ([]domain.TicketStatusCount, error)
	Touch(ctx context.Context, id int64, at time.Time) error
}

type ticketRepository struct {
	base
}

var ticketColumns = []string{
	"id", "title", "description", "category_id", "priority_id", "status_id", "department_id",
	"team_id", "assigned_to_id", "created_by_id", "created_at", "updated_at", "closed_at",
}

var ticketDetailColumns = []string{
	"t.id", "t.title", "t.description", "t.category_id", "t.priority_id", "t.status_id",
	"t.department_id", "t.team_id", "t.assigned_to_id", "t.created_by_id",
	"t.created_at", "t.updated_at", "t.closed_at",
	"c.name AS category_name",
	"p.name AS priority_name",
	"s.name AS status_name",
	"s.is_terminal AS status_is_terminal",
	"d.name AS department_name",
	"tm.name AS team_name",
	"TRIM(a.first_name || ' ' || a.last_name) AS assigned_to_name",
	"TRIM(u.first_name || ' ' || u.last_name) AS created_by_name",
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db persistence.Querier) TicketRepository {
	return &ticketRepository{base{db: db}}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	stmt := psql.Insert("tickets").
		Columns("title", "description", "category_id", "priority_id", "status_id", "department_id",
			"team_id", "assigned_to_id", "created_by_id", "created_at", "updated_at", "closed_at").
		Values(ticket.Title, ticket.Description, ticket.CategoryID, ticket.PriorityID, ticket.StatusID,
			ticket.DepartmentID, ticket.TeamID, ticket.AssignedToID, ticket.CreatedByID,
			ticket.CreatedAt, ticket.UpdatedAt, ticket.ClosedAt).
		Suffix("RETURNING id")
	return insertReturning(ctx, r.q(ctx), stmt, &ticket.ID)
}

// Update writes every mutable column, including the caller-supplied updated_at.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	stmt := psql.Update("tickets").
		Set("title", ticket.Title).
		Set("description", ticket.Description).
		Set("category_id", ticket.CategoryID).
		Set("priority_id", ticket.PriorityID).
		Set("status_id", ticket.StatusID).
		Set("department_id", ticket.DepartmentID).
		Set("team_id", ticket.TeamID).
		Set("assigned_to_id", ticket.AssignedToID).
		Set("updated_at", ticket.UpdatedAt).
		Set("closed_at", ticket.ClosedAt).
		Where(squirrel.Eq{"id": ticket.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

// Delete removes the ticket; comments, attachments and feedback cascade.
func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.q(ctx), psql.Delete("tickets").Where(squirrel.Eq{"id": id}))
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	stmt := psql.Select(ticketColumns...).From("tickets").Where(squirrel.Eq{"id": id})
	return getOne[domain.Ticket](ctx, r.q(ctx), stmt)
}

func (r *ticketRepository) GetDetails(ctx context.Context, id int64) (*domain.TicketDetails, error) {
	stmt := detailsQuery().Where(squirrel.Eq{"t.id": id})
	return getOne[domain.TicketDetails](ctx, r.q(ctx), stmt)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TicketDetails, error) {
	stmt := applyTicketFilter(detailsQuery(), filter).OrderBy("t.created_at DESC", "t.id DESC")
	return selectAll[domain.TicketDetails](ctx, r.q(ctx), stmt)
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	stmt := applyTicketFilter(psql.Select("COUNT(*)").From("tickets t"), filter)
	return scalar[int64](ctx, r.q(ctx), stmt)
}

// CountByStatus returns one row per status, including statuses with no tickets.
func (r *ticketRepository) CountByStatus(ctx context.Context) ([]domain.TicketStatusCount, error) {
	stmt := psql.Select("s.id AS status_id", "s.name AS status_name", "COUNT(t.id) AS ticket_count").
		From("ticket_statuses s").
		LeftJoin("tickets t ON t.status_id = s.id").
		GroupBy("s.id", "s.name").
		OrderBy("s.id")
	return selectAll[domain.TicketStatusCount](ctx, r.q(ctx), stmt)
}

func (r *ticketRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	stmt := psql.Update("tickets").Set("updated_at", at).Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func detailsQuery() squirrel.SelectBuilder {
	return psql.Select(ticketDetailColumns...).
		From("tickets t").
		Join("ticket_categories c ON c.id = t.category_id").
		Join("ticket_priorities p ON p.id = t.priority_id").
		Join("ticket_statuses s ON s.id = t.status_id").
		Join("departments d ON d.id = t.department_id").
		Join("users u ON u.id = t.created_by_id").
		LeftJoin("teams tm ON tm.id = t.team_id").
		LeftJoin("users a ON a.id = t.assigned_to_id")
}

func applyTicketFilter(stmt squirrel.SelectBuilder, f TicketFilter) squirrel.SelectBuilder {
	eq := squirrel.Eq{}
	if f.CreatedByID != nil {
		eq["t.created_by_id"] = *f.CreatedByID
	}
	if f.AssignedToID != nil {
		eq["t.assigned_to_id"] = *f.AssignedToID
	}
	if f.DepartmentID != nil {
		eq["t.department_id"] = *f.DepartmentID
	}
	if f.TeamID != nil {
		eq["t.team_id"] = *f.TeamID
	}
	if f.StatusID != nil {
		eq["t.status_id"] = *f.StatusID
	}
	if f.PriorityID != nil {
		eq["t.priority_id"] = *f.PriorityID
	}
	if f.CategoryID != nil {
		eq["t.category_id"] = *f.CategoryID
	}
	if len(eq) > 0 {
		stmt = stmt.Where(eq)
	}
	if f.ActiveOnly {
		stmt = stmt.Where("t.closed_at IS NULL")
	}
	if f.CreatedFrom != nil {
		stmt = stmt.Where(squirrel.GtOrEq{"t.created_at": *f.CreatedFrom})
	}
	if f.CreatedTo != nil {
		stmt = stmt.Where(squirrel.LtOrEq{"t.created_at": *f.CreatedTo})
	}
	return stmt
}
