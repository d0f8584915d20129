package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	feedback    repository.FeedbackRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	teams       repository.TeamRepository
	categories  repository.CategoryRepository
	priorities  repository.PriorityRepository
	statuses    repository.StatusRepository
	tx          TxRunner
	sanitizer   TextSanitizer
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	FeedbackRepo   repository.FeedbackRepository
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	TeamRepo       repository.TeamRepository
	CategoryRepo   repository.CategoryRepository
	PriorityRepo   repository.PriorityRepository
	StatusRepo     repository.StatusRepository
	Tx             TxRunner
	Sanitizer      TextSanitizer
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Now            func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	CategoryID   int64
	PriorityID   int64
	DepartmentID int64
	TeamID       *int64
	AssignedToID *int64
}

// TicketUpdateInput replaces the editable fields of a ticket.
type TicketUpdateInput struct {
	Title        string
	Description  string
	CategoryID   int64
	PriorityID   int64
	StatusID     int64
	DepartmentID int64
	TeamID       *int64
	AssignedToID *int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		feedback:    deps.FeedbackRepo,
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		teams:       deps.TeamRepo,
		categories:  deps.CategoryRepo,
		priorities:  deps.PriorityRepo,
		statuses:    deps.StatusRepo,
		tx:          deps.Tx,
		sanitizer:   deps.Sanitizer,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         now,
	}
}

// Create validates references in a fixed order and opens a ticket in the
// default status.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput, creatorID int64) (*domain.TicketDetails, error) {
	creator, ok, err := exists(s.users.GetByID(ctx, creatorID))
	if err != nil {
		return nil, err
	}
	if !activeUser(creator, ok) {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": creatorID})
	}

	title, err := requireName(input.Title, "Title")
	if err != nil {
		return nil, err
	}
	if err := s.validatePlacement(ctx, input.DepartmentID, input.TeamID); err != nil {
		return nil, err
	}

	category, ok, err := exists(s.categories.GetByID(ctx, input.CategoryID))
	if err != nil {
		return nil, err
	}
	if !ok || !category.IsActive {
		return nil, apperrors.NewValidationError("Invalid or inactive category", map[string]any{"category_id": input.CategoryID})
	}
	if err := s.validatePriority(ctx, input.PriorityID); err != nil {
		return nil, err
	}
	if err := s.validateAssignee(ctx, input.AssignedToID); err != nil {
		return nil, err
	}

	_, ok, err = exists(s.statuses.GetByID(ctx, domain.DefaultStatusID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewValidationError("Default ticket status is not configured", map[string]any{"status_id": domain.DefaultStatusID})
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	ticket := &domain.Ticket{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		CategoryID:   input.CategoryID,
		PriorityID:   input.PriorityID,
		StatusID:     domain.DefaultStatusID,
		DepartmentID: input.DepartmentID,
		TeamID:       input.TeamID,
		AssignedToID: input.AssignedToID,
		CreatedByID:  creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket created", zap.Int64("ticket_id", ticket.ID), zap.Int64("created_by", creatorID))
	publish(ctx, s.dispatcher, events.NewEvent(events.EventTicketCreated, ticket.ID, creatorID, events.TicketCreatedPayload{
		Title:        ticket.Title,
		DepartmentID: ticket.DepartmentID,
		PriorityID:   ticket.PriorityID,
		CreatedByID:  creatorID,
	}))
	return s.details(ctx, ticket.ID)
}

// Update replaces editable fields. Department and team are re-validated when
// either changes; closed_at follows the terminal flag of the resulting status.
func (s *TicketService) Update(ctx context.Context, id int64, input TicketUpdateInput, updaterID int64) (*domain.TicketDetails, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	if _, err := s.users.GetByID(ctx, updaterID); err != nil {
		return nil, notFoundOr(err, "user", updaterID)
	}

	title, err := requireName(input.Title, "Title")
	if err != nil {
		return nil, err
	}
	if _, ok, err := exists(s.categories.GetByID(ctx, input.CategoryID)); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.NewValidationError("Invalid category", map[string]any{"category_id": input.CategoryID})
	}
	if err := s.validatePriority(ctx, input.PriorityID); err != nil {
		return nil, err
	}
	status, ok, err := exists(s.statuses.GetByID(ctx, input.StatusID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status_id": input.StatusID})
	}
	if input.DepartmentID != ticket.DepartmentID || !sameID(input.TeamID, ticket.TeamID) {
		if err := s.validatePlacement(ctx, input.DepartmentID, input.TeamID); err != nil {
			return nil, err
		}
	}
	if !sameID(input.AssignedToID, ticket.AssignedToID) {
		if err := s.validateAssignee(ctx, input.AssignedToID); err != nil {
			return nil, err
		}
	}

	now := nextUpdatedAt(s.now(), ticket.UpdatedAt)
	ticket.Title = title
	ticket.Description = strings.TrimSpace(input.Description)
	ticket.CategoryID = input.CategoryID
	ticket.PriorityID = input.PriorityID
	ticket.DepartmentID = input.DepartmentID
	ticket.TeamID = input.TeamID
	ticket.AssignedToID = input.AssignedToID
	applyStatus(ticket, status, now)
	ticket.UpdatedAt = now

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	publish(ctx, s.dispatcher, events.NewEvent(events.EventTicketUpdated, id, updaterID, nil))
	return s.details(ctx, id)
}

// Delete removes a ticket and everything attached to it.
func (s *TicketService) Delete(ctx context.Context, id, actorID int64) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return notFoundOr(err, "ticket", id)
	}
	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id), zap.Int64("actor_id", actorID))
	publish(ctx, s.dispatcher, events.NewEvent(events.EventTicketDeleted, id, actorID, nil))
	return nil
}

// UpdateStatus moves the ticket to any status and records an internal note.
func (s *TicketService) UpdateStatus(ctx context.Context, id, statusID, actorID int64) (*domain.TicketDetails, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	status, err := s.statuses.GetByID(ctx, statusID)
	if err != nil {
		return nil, notFoundOr(err, "ticket status", statusID)
	}
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return nil, notFoundOr(err, "user", actorID)
	}

	oldStatusID := ticket.StatusID
	now := nextUpdatedAt(s.now(), ticket.UpdatedAt)
	applyStatus(ticket, status, now)
	ticket.UpdatedAt = now

	note := fmt.Sprintf("Status changed to %s", status.Name)
	if err := s.saveWithNote(ctx, ticket, actorID, note); err != nil {
		return nil, err
	}

	s.logger.Info("ticket status changed",
		zap.Int64("ticket_id", id),
		zap.Int64("old_status_id", oldStatusID),
		zap.Int64("new_status_id", status.ID),
		zap.Int64("actor_id", actorID))
	publish(ctx, s.dispatcher, events.NewEvent(events.EventTicketStatusChanged, id, actorID, events.TicketStatusChangedPayload{
		OldStatusID:   oldStatusID,
		NewStatusID:   status.ID,
		NewStatusName: status.Name,
		Closed:        ticket.IsClosed(),
	}))
	return s.details(ctx, id)
}

// CloseTicket moves the ticket into the configured closing status.
func (s *TicketService) CloseTicket(ctx context.Context, id, actorID int64) (*domain.TicketDetails, error) {
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	status, ok := domain.FindCloseStatus(statuses)
	if !ok {
		return nil, apperrors.NewValidationError("No closed status is configured", nil)
	}
	return s.UpdateStatus(ctx, id, status.ID, actorID)
}

// ReopenTicket moves the ticket into the configured reopen status.
func (s *TicketService) ReopenTicket(ctx context.Context, id, actorID int64) (*domain.TicketDetails, error) {
	statuses, err := s.statuses.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	status, ok := domain.FindReopenStatus(statuses)
	if !ok {
		return nil, apperrors.NewValidationError("No open or reopened status is configured", nil)
	}
	return s.UpdateStatus(ctx, id, status.ID, actorID)
}

// saveWithNote writes the ticket and its internal audit comment atomically.
func (s *TicketService) saveWithNote(ctx context.Context, ticket *domain.Ticket, actorID int64, note string) error {
	return saveWithNote(ctx, s.tx, s.tickets, s.comments, ticket, actorID, note)
}

func saveWithNote(ctx context.Context, tx TxRunner, tickets repository.TicketRepository, comments repository.CommentRepository, ticket *domain.Ticket, actorID int64, note string) error {
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return comments.Create(ctx, &domain.TicketComment{
			TicketID:   ticket.ID,
			UserID:     actorID,
			Comment:    note,
			IsInternal: true,
			CreatedAt:  ticket.UpdatedAt,
		})
	})
	if err != nil {
		return notFoundOr(err, "ticket", ticket.ID)
	}
	return nil
}

// applyStatus sets the status and keeps closed_at consistent with it.
func applyStatus(t *domain.Ticket, status *domain.TicketStatus, now time.Time) {
	t.StatusID = status.ID
	if status.IsTerminal {
		if t.ClosedAt == nil {
			closed := now
			t.ClosedAt = &closed
		}
		return
	}
	t.ClosedAt = nil
}

func (s *TicketService) validatePlacement(ctx context.Context, departmentID int64, teamID *int64) error {
	dept, ok, err := exists(s.departments.GetByID(ctx, departmentID))
	if err != nil {
		return err
	}
	if !ok || !dept.IsActive {
		return apperrors.NewValidationError("Invalid or inactive department", map[string]any{"department_id": departmentID})
	}
	if teamID == nil {
		return nil
	}
	team, ok, err := exists(s.teams.GetByID(ctx, *teamID))
	if err != nil {
		return err
	}
	if !ok || !team.IsActive || team.DepartmentID != departmentID {
		return apperrors.NewValidationError("Invalid team for the selected department", map[string]any{"team_id": *teamID, "department_id": departmentID})
	}
	return nil
}

func (s *TicketService) validatePriority(ctx context.Context, priorityID int64) error {
	_, ok, err := exists(s.priorities.GetByID(ctx, priorityID))
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidationError("Invalid priority", map[string]any{"priority_id": priorityID})
	}
	return nil
}

func (s *TicketService) validateAssignee(ctx context.Context, assigneeID *int64) error {
	if assigneeID == nil {
		return nil
	}
	assignee, ok, err := exists(s.users.GetByID(ctx, *assigneeID))
	if err != nil {
		return err
	}
	if !activeUser(assignee, ok) {
		return apperrors.NewValidationError("Invalid or inactive assignee", map[string]any{"assigned_to_id": *assigneeID})
	}
	return nil
}

func (s *TicketService) details(ctx context.Context, id int64) (*domain.TicketDetails, error) {
	d, err := s.tickets.GetDetails(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	return d, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
