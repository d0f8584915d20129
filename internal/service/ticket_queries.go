package service

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketSummary aggregates counts for dashboards and reports.
type TicketSummary struct {
	Total    int64
	Active   int64
	ByStatus []domain.TicketStatusCount
}

// GetByID returns the ticket projection.
func (s *TicketService) GetByID(ctx context.Context, id int64) (*domain.TicketDetails, error) {
	return s.details(ctx, id)
}

func (s *TicketService) GetAll(ctx context.Context) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{})
}

// GetByUser lists tickets created by the user.
func (s *TicketService) GetByUser(ctx context.Context, userID int64) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{CreatedByID: &userID})
}

func (s *TicketService) GetAssignedToUser(ctx context.Context, userID int64) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{AssignedToID: &userID})
}

func (s *TicketService) GetByDepartment(ctx context.Context, departmentID int64) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{DepartmentID: &departmentID})
}

func (s *TicketService) GetByTeam(ctx context.Context, teamID int64) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{TeamID: &teamID})
}

func (s *TicketService) GetByStatus(ctx context.Context, statusID int64) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{StatusID: &statusID})
}

func (s *TicketService) GetByPriority(ctx context.Context, priorityID int64) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{PriorityID: &priorityID})
}

func (s *TicketService) GetByCategory(ctx context.Context, categoryID int64) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{CategoryID: &categoryID})
}

// GetActive lists tickets that have not been closed.
func (s *TicketService) GetActive(ctx context.Context) ([]domain.TicketDetails, error) {
	return s.list(ctx, repository.TicketFilter{ActiveOnly: true})
}

// GetCreatedBetweenDates lists tickets created in [from, to].
func (s *TicketService) GetCreatedBetweenDates(ctx context.Context, from, to time.Time) ([]domain.TicketDetails, error) {
	if from.After(to) {
		return nil, apperrors.NewValidationError("Start date must not be after end date", map[string]any{"from": from, "to": to})
	}
	return s.list(ctx, repository.TicketFilter{CreatedFrom: &from, CreatedTo: &to})
}

// Export lists tickets for a report with an arbitrary filter.
func (s *TicketService) Export(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketDetails, error) {
	return s.list(ctx, filter)
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketDetails, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) ActiveCount(ctx context.Context) (int64, error) {
	return s.count(ctx, repository.TicketFilter{ActiveOnly: true})
}

func (s *TicketService) CountByStatus(ctx context.Context, statusID int64) (int64, error) {
	return s.count(ctx, repository.TicketFilter{StatusID: &statusID})
}

func (s *TicketService) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return s.count(ctx, repository.TicketFilter{CreatedByID: &userID})
}

func (s *TicketService) CountByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	return s.count(ctx, repository.TicketFilter{DepartmentID: &departmentID})
}

// Summary returns the total, active and per-status counts.
func (s *TicketService) Summary(ctx context.Context) (*TicketSummary, error) {
	total, err := s.count(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	active, err := s.ActiveCount(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketSummary{Total: total, Active: active, ByStatus: byStatus}, nil
}

func (s *TicketService) count(ctx context.Context, filter repository.TicketFilter) (int64, error) {
	n, err := s.tickets.Count(ctx, filter)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return n, nil
}
