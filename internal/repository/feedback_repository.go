package repository

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// FeedbackRepository stores requester ratings. A ticket has at most one.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.TicketFeedback) error
	GetByTicket(ctx context.Context, ticketID int64) (*domain.TicketFeedback, error)
}

type feedbackRepository struct {
	base
}

func NewFeedbackRepository(db persistence.Querier) FeedbackRepository {
	return &feedbackRepository{base{db: db}}
}

func (r *feedbackRepository) Create(ctx context.Context, f *domain.TicketFeedback) error {
	stmt := psql.Insert("ticket_feedback").
		Columns("ticket_id", "user_id", "rating", "comment", "created_at").
		Values(f.TicketID, f.UserID, f.Rating, f.Comment, f.CreatedAt).
		Suffix("RETURNING id")
	return insertReturning(ctx, r.q(ctx), stmt, &f.ID)
}

func (r *feedbackRepository) GetByTicket(ctx context.Context, ticketID int64) (*domain.TicketFeedback, error) {
	stmt := psql.Select("id", "ticket_id", "user_id", "rating", "comment", "created_at").
		From("ticket_feedback").
		Where(squirrel.Eq{"ticket_id": ticketID})
	return getOne[domain.TicketFeedback](ctx, r.q(ctx), stmt)
}
