package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TeamInput is used for create and update.
type TeamInput struct {
	DepartmentID int64
	Name         string
	Description  string
	IsActive     *bool
}

// TeamService manages teams within departments.
type TeamService struct {
	teams       repository.TeamRepository
	departments repository.DepartmentRepository
	logger      *zap.Logger
}

func NewTeamService(teams repository.TeamRepository, departments repository.DepartmentRepository, logger *zap.Logger) *TeamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamService{teams: teams, departments: departments, logger: logger}
}

func (s *TeamService) GetByID(ctx context.Context, id int64, includeInactive bool) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "team", id)
	}
	if !team.IsActive && !includeInactive {
		return nil, apperrors.NewNotFound("team", map[string]any{"id": id})
	}
	return team, nil
}

func (s *TeamService) GetAll(ctx context.Context) ([]domain.Team, error) {
	list, err := s.teams.List(ctx, false)
	return list, apperrors.MapError(err)
}

func (s *TeamService) GetActive(ctx context.Context) ([]domain.Team, error) {
	list, err := s.teams.List(ctx, true)
	return list, apperrors.MapError(err)
}

// GetByDepartment lists every team of an existing department.
func (s *TeamService) GetByDepartment(ctx context.Context, departmentID int64) ([]domain.Team, error) {
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return nil, notFoundOr(err, "department", departmentID)
	}
	list, err := s.teams.ListByDepartment(ctx, departmentID)
	return list, apperrors.MapError(err)
}

func (s *TeamService) Create(ctx context.Context, input TeamInput) (*domain.Team, error) {
	if err := s.requireActiveDepartment(ctx, input.DepartmentID); err != nil {
		return nil, err
	}
	name, err := s.uniqueName(ctx, input.DepartmentID, input.Name, 0)
	if err != nil {
		return nil, err
	}
	team := &domain.Team{
		DepartmentID: input.DepartmentID,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		IsActive:     true,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("team created", zap.Int64("team_id", team.ID), zap.Int64("department_id", team.DepartmentID))
	return team, nil
}

func (s *TeamService) Update(ctx context.Context, id int64, input TeamInput) (*domain.Team, error) {
	team, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveDepartment(ctx, input.DepartmentID); err != nil {
		return nil, err
	}
	name, err := s.uniqueName(ctx, input.DepartmentID, input.Name, id)
	if err != nil {
		return nil, err
	}
	team.DepartmentID = input.DepartmentID
	team.Name = name
	team.Description = strings.TrimSpace(input.Description)
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, notFoundOr(err, "team", id)
	}
	return team, nil
}

func (s *TeamService) Deactivate(ctx context.Context, id int64) error {
	if err := s.teams.SetActive(ctx, id, false); err != nil {
		return notFoundOr(err, "team", id)
	}
	s.logger.Info("team deactivated", zap.Int64("team_id", id))
	return nil
}

func (s *TeamService) requireActiveDepartment(ctx context.Context, departmentID int64) error {
	dept, ok, err := exists(s.departments.GetByID(ctx, departmentID))
	if err != nil {
		return err
	}
	if !ok || !dept.IsActive {
		return apperrors.NewValidationError("Invalid or inactive department", map[string]any{"department_id": departmentID})
	}
	return nil
}

func (s *TeamService) uniqueName(ctx context.Context, departmentID int64, raw string, excludeID int64) (string, error) {
	name, err := requireName(raw, "Name")
	if err != nil {
		return "", err
	}
	taken, err := s.teams.NameExists(ctx, departmentID, name, excludeID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if taken {
		return "", duplicateName("Team name already exists in this department", name)
	}
	return name, nil
}
