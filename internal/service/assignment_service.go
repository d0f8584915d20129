package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// AssignmentService manages who works a ticket. Every change is recorded as an
// internal comment written in the same transaction as the ticket update.
type AssignmentService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	tx         TxRunner
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AssignmentDependencies wires repositories.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Tx          TxRunner
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewAssignmentService constructs service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// AssignTicket sets the assignee.
func (s *AssignmentService) AssignTicket(ctx context.Context, ticketID, assigneeID, actorID int64) (*domain.TicketDetails, error) {
	ticket, assignee, err := s.load(ctx, ticketID, &assigneeID, actorID)
	if err != nil {
		return nil, err
	}
	note := fmt.Sprintf("Ticket assigned to %s", assignee.FullName())
	return s.apply(ctx, ticket, &assigneeID, actorID, note)
}

// UnassignTicket clears the assignee.
func (s *AssignmentService) UnassignTicket(ctx context.Context, ticketID, actorID int64) (*domain.TicketDetails, error) {
	ticket, _, err := s.load(ctx, ticketID, nil, actorID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ticket, nil, actorID, "Ticket unassigned")
}

// ReassignTicket replaces the assignee, naming both in the audit note.
func (s *AssignmentService) ReassignTicket(ctx context.Context, ticketID, newAssigneeID, actorID int64) (*domain.TicketDetails, error) {
	ticket, assignee, err := s.load(ctx, ticketID, &newAssigneeID, actorID)
	if err != nil {
		return nil, err
	}

	previous := "Unassigned"
	if ticket.AssignedToID != nil {
		old, err := s.users.GetByID(ctx, *ticket.AssignedToID)
		switch {
		case err == nil:
			previous = old.FullName()
		case !isNoRows(err):
			return nil, apperrors.MapError(err)
		}
	}

	note := fmt.Sprintf("Ticket reassigned from %s to %s", previous, assignee.FullName())
	return s.apply(ctx, ticket, &newAssigneeID, actorID, note)
}

func (s *AssignmentService) load(ctx context.Context, ticketID int64, assigneeID *int64, actorID int64) (*domain.Ticket, *domain.User, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, notFoundOr(err, "ticket", ticketID)
	}
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return nil, nil, notFoundOr(err, "user", actorID)
	}
	if assigneeID == nil {
		return ticket, nil, nil
	}
	assignee, err := s.users.GetByID(ctx, *assigneeID)
	if err != nil {
		return nil, nil, notFoundOr(err, "user", *assigneeID)
	}
	if !assignee.IsActive {
		return nil, nil, apperrors.NewValidationError("Cannot assign a ticket to an inactive user", map[string]any{"user_id": *assigneeID})
	}
	return ticket, assignee, nil
}

func (s *AssignmentService) apply(ctx context.Context, ticket *domain.Ticket, assigneeID *int64, actorID int64, note string) (*domain.TicketDetails, error) {
	previous := ticket.AssignedToID
	ticket.AssignedToID = assigneeID
	ticket.UpdatedAt = nextUpdatedAt(s.now(), ticket.UpdatedAt)

	if err := saveWithNote(ctx, s.tx, s.tickets, s.comments, ticket, actorID, note); err != nil {
		return nil, err
	}

	eventType := events.EventTicketAssigned
	if assigneeID == nil {
		eventType = events.EventTicketUnassigned
	}
	s.logger.Info("ticket assignment changed", zap.Int64("ticket_id", ticket.ID), zap.Int64("actor_id", actorID), zap.String("note", note))
	publish(ctx, s.dispatcher, events.NewEvent(eventType, ticket.ID, actorID, events.TicketAssignedPayload{
		PreviousAssigneeID: previous,
		AssigneeID:         assigneeID,
	}))

	details, err := s.tickets.GetDetails(ctx, ticket.ID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticket.ID)
	}
	return details, nil
}
