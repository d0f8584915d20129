package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// ticketCounter is the slice of TicketRepository the delete guards need.
type ticketCounter interface {
	Count(ctx context.Context, filter repository.TicketFilter) (int64, error)
}

// CategoryInput is used for create and update.
type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

type CategoryService struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
}

func NewCategoryService(categories repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{categories: categories, logger: logger}
}

func (s *CategoryService) GetByID(ctx context.Context, id int64, includeInactive bool) (*domain.TicketCategory, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category", id)
	}
	if !c.IsActive && !includeInactive {
		return nil, apperrors.NewNotFound("category", map[string]any{"id": id})
	}
	return c, nil
}

func (s *CategoryService) GetAll(ctx context.Context) ([]domain.TicketCategory, error) {
	list, err := s.categories.List(ctx, false)
	return list, apperrors.MapError(err)
}

func (s *CategoryService) GetActive(ctx context.Context) ([]domain.TicketCategory, error) {
	list, err := s.categories.List(ctx, true)
	return list, apperrors.MapError(err)
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.TicketCategory, error) {
	name, err := uniqueName(ctx, s.categories.NameExists, input.Name, 0, "Category name already exists")
	if err != nil {
		return nil, err
	}
	c := &domain.TicketCategory{Name: name, Description: strings.TrimSpace(input.Description), IsActive: true}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("category created", zap.Int64("category_id", c.ID))
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, input CategoryInput) (*domain.TicketCategory, error) {
	c, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	name, err := uniqueName(ctx, s.categories.NameExists, input.Name, id, "Category name already exists")
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Description = strings.TrimSpace(input.Description)
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, notFoundOr(err, "category", id)
	}
	return c, nil
}

func (s *CategoryService) Deactivate(ctx context.Context, id int64) error {
	if err := s.categories.SetActive(ctx, id, false); err != nil {
		return notFoundOr(err, "category", id)
	}
	s.logger.Info("category deactivated", zap.Int64("category_id", id))
	return nil
}

// PriorityInput is used for create and update.
type PriorityInput struct {
	Name        string
	Description string
	Level       int
}

type PriorityService struct {
	priorities repository.PriorityRepository
	tickets    ticketCounter
	logger     *zap.Logger
}

func NewPriorityService(priorities repository.PriorityRepository, tickets ticketCounter, logger *zap.Logger) *PriorityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriorityService{priorities: priorities, tickets: tickets, logger: logger}
}

func (s *PriorityService) GetByID(ctx context.Context, id int64) (*domain.TicketPriority, error) {
	p, err := s.priorities.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "priority", id)
	}
	return p, nil
}

// GetAll orders by level.
func (s *PriorityService) GetAll(ctx context.Context) ([]domain.TicketPriority, error) {
	list, err := s.priorities.List(ctx)
	return list, apperrors.MapError(err)
}

func (s *PriorityService) GetAllOrderedByName(ctx context.Context) ([]domain.TicketPriority, error) {
	list, err := s.priorities.ListOrderedByName(ctx)
	return list, apperrors.MapError(err)
}

func (s *PriorityService) Create(ctx context.Context, input PriorityInput) (*domain.TicketPriority, error) {
	name, err := uniqueName(ctx, s.priorities.NameExists, input.Name, 0, "Priority name already exists")
	if err != nil {
		return nil, err
	}
	p := &domain.TicketPriority{Name: name, Description: strings.TrimSpace(input.Description), Level: input.Level}
	if err := s.priorities.Create(ctx, p); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("priority created", zap.Int64("priority_id", p.ID))
	return p, nil
}

func (s *PriorityService) Update(ctx context.Context, id int64, input PriorityInput) (*domain.TicketPriority, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := uniqueName(ctx, s.priorities.NameExists, input.Name, id, "Priority name already exists")
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.Description = strings.TrimSpace(input.Description)
	p.Level = input.Level
	if err := s.priorities.Update(ctx, p); err != nil {
		return nil, notFoundOr(err, "priority", id)
	}
	return p, nil
}

// Delete removes the priority if no ticket references it.
func (s *PriorityService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := ensureUnused(ctx, s.tickets, repository.TicketFilter{PriorityID: &id}, "Priority is in use by existing tickets"); err != nil {
		return err
	}
	if err := s.priorities.Delete(ctx, id); err != nil {
		return notFoundOr(err, "priority", id)
	}
	s.logger.Info("priority deleted", zap.Int64("priority_id", id))
	return nil
}

// StatusInput is used for create and update. A nil IsTerminal is inferred from the name.
type StatusInput struct {
	Name        string
	Description string
	IsTerminal  *bool
	Color       string
}

type StatusService struct {
	statuses repository.StatusRepository
	tickets  ticketCounter
	logger   *zap.Logger
}

func NewStatusService(statuses repository.StatusRepository, tickets ticketCounter, logger *zap.Logger) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{statuses: statuses, tickets: tickets, logger: logger}
}

func (s *StatusService) GetByID(ctx context.Context, id int64) (*domain.TicketStatus, error) {
	st, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "status", id)
	}
	return st, nil
}

func (s *StatusService) GetAll(ctx context.Context) ([]domain.TicketStatus, error) {
	list, err := s.statuses.List(ctx)
	return list, apperrors.MapError(err)
}

func (s *StatusService) GetAllOrderedByName(ctx context.Context) ([]domain.TicketStatus, error) {
	list, err := s.statuses.ListOrderedByName(ctx)
	return list, apperrors.MapError(err)
}

func (s *StatusService) Create(ctx context.Context, input StatusInput) (*domain.TicketStatus, error) {
	name, err := uniqueName(ctx, s.statuses.NameExists, input.Name, 0, "Status name already exists")
	if err != nil {
		return nil, err
	}
	terminal, err := terminalFlag(input.IsTerminal, false, name)
	if err != nil {
		return nil, err
	}
	st := &domain.TicketStatus{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsTerminal:  terminal,
		Color:       strings.TrimSpace(input.Color),
	}
	if err := s.statuses.Create(ctx, st); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("status created", zap.Int64("status_id", st.ID), zap.Bool("terminal", st.IsTerminal))
	return st, nil
}

// Update keeps the stored IsTerminal flag unless one is supplied or the new
// name forces it. The flag cannot change while tickets use the status.
func (s *StatusService) Update(ctx context.Context, id int64, input StatusInput) (*domain.TicketStatus, error) {
	st, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := uniqueName(ctx, s.statuses.NameExists, input.Name, id, "Status name already exists")
	if err != nil {
		return nil, err
	}
	terminal, err := terminalFlag(input.IsTerminal, st.IsTerminal, name)
	if err != nil {
		return nil, err
	}
	if terminal != st.IsTerminal {
		if err := ensureUnused(ctx, s.tickets, repository.TicketFilter{StatusID: &id}, "Cannot change whether a status closes tickets while tickets use it"); err != nil {
			return nil, err
		}
	}
	st.Name = name
	st.Description = strings.TrimSpace(input.Description)
	st.Color = strings.TrimSpace(input.Color)
	st.IsTerminal = terminal
	if err := s.statuses.Update(ctx, st); err != nil {
		return nil, notFoundOr(err, "status", id)
	}
	return st, nil
}

func (s *StatusService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := ensureUnused(ctx, s.tickets, repository.TicketFilter{StatusID: &id}, "Status is in use by existing tickets"); err != nil {
		return err
	}
	if err := s.statuses.Delete(ctx, id); err != nil {
		return notFoundOr(err, "status", id)
	}
	s.logger.Info("status deleted", zap.Int64("status_id", id))
	return nil
}

// terminalFlag resolves IsTerminal for a status name. Names containing a
// closing keyword are always terminal; other names may opt in explicitly.
func terminalFlag(explicit *bool, current bool, name string) (bool, error) {
	keyword := domain.IsTerminalStatusName(name)
	if explicit == nil {
		return current || keyword, nil
	}
	if keyword && !*explicit {
		return false, apperrors.NewValidationError("Validation failed", map[string]any{
			"is_terminal": "A status named as closed or resolved must be terminal",
		})
	}
	return *explicit, nil
}

type nameExistsFunc func(ctx context.Context, name string, excludeID int64) (bool, error)

func uniqueName(ctx context.Context, check nameExistsFunc, raw string, excludeID int64, message string) (string, error) {
	name, err := requireName(raw, "Name")
	if err != nil {
		return "", err
	}
	taken, err := check(ctx, name, excludeID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if taken {
		return "", duplicateName(message, name)
	}
	return name, nil
}

func ensureUnused(ctx context.Context, tickets ticketCounter, filter repository.TicketFilter, message string) error {
	n, err := tickets.Count(ctx, filter)
	if err != nil {
		return apperrors.MapError(err)
	}
	if n > 0 {
		return apperrors.NewValidationError(message, map[string]any{"tickets": n})
	}
	return nil
}
