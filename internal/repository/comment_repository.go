package repository

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// CommentRepository stores the ticket conversation.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) error
	ListByTicket(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.TicketComment, error)
}

type commentRepository struct {
	base
}

// NewCommentRepository creates repository.
func NewCommentRepository(db persistence.Querier) CommentRepository {
	return &commentRepository{base{db: db}}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.TicketComment) error {
	stmt := psql.Insert("ticket_comments").
		Columns("ticket_id", "user_id", "comment", "is_internal", "created_at").
		Values(comment.TicketID, comment.UserID, comment.Comment, comment.IsInternal, comment.CreatedAt).
		Suffix("RETURNING id")
	return insertReturning(ctx, r.q(ctx), stmt, &comment.ID)
}

// ListByTicket returns comments newest first with the author's display name.
func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.TicketComment, error) {
	stmt := psql.Select(
		"tc.id", "tc.ticket_id", "tc.user_id", "tc.comment", "tc.is_internal", "tc.created_at",
		"TRIM(u.first_name || ' ' || u.last_name) AS author_name",
	).
		From("ticket_comments tc").
		Join("users u ON u.id = tc.user_id").
		Where(squirrel.Eq{"tc.ticket_id": ticketID}).
		OrderBy("tc.created_at DESC", "tc.id DESC")
	if !includeInternal {
		stmt = stmt.Where(squirrel.Eq{"tc.is_internal": false})
	}
	return selectAll[domain.TicketComment](ctx, r.q(ctx), stmt)
}
