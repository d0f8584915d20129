package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// DepartmentInput is used for create and update. IsActive is ignored on create.
type DepartmentInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// DepartmentService manages departments. Departments are deactivated, never deleted.
type DepartmentService struct {
	departments repository.DepartmentRepository
	logger      *zap.Logger
}

func NewDepartmentService(departments repository.DepartmentRepository, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{departments: departments, logger: logger}
}

// GetByID hides inactive departments unless includeInactive is set.
func (s *DepartmentService) GetByID(ctx context.Context, id int64, includeInactive bool) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department", id)
	}
	if !dept.IsActive && !includeInactive {
		return nil, apperrors.NewNotFound("department", map[string]any{"id": id})
	}
	return dept, nil
}

func (s *DepartmentService) GetAll(ctx context.Context) ([]domain.Department, error) {
	list, err := s.departments.List(ctx, false)
	return list, apperrors.MapError(err)
}

func (s *DepartmentService) GetActive(ctx context.Context) ([]domain.Department, error) {
	list, err := s.departments.List(ctx, true)
	return list, apperrors.MapError(err)
}

func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	name, err := uniqueName(ctx, s.departments.NameExists, input.Name, 0, "Department name already exists")
	if err != nil {
		return nil, err
	}
	dept := &domain.Department{Name: name, Description: strings.TrimSpace(input.Description), IsActive: true}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("department created", zap.Int64("department_id", dept.ID), zap.String("name", dept.Name))
	return dept, nil
}

func (s *DepartmentService) Update(ctx context.Context, id int64, input DepartmentInput) (*domain.Department, error) {
	dept, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	name, err := uniqueName(ctx, s.departments.NameExists, input.Name, id, "Department name already exists")
	if err != nil {
		return nil, err
	}
	dept.Name = name
	dept.Description = strings.TrimSpace(input.Description)
	if input.IsActive != nil {
		dept.IsActive = *input.IsActive
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, notFoundOr(err, "department", id)
	}
	return dept, nil
}

// Deactivate soft-deletes the department.
func (s *DepartmentService) Deactivate(ctx context.Context, id int64) error {
	if err := s.departments.SetActive(ctx, id, false); err != nil {
		return notFoundOr(err, "department", id)
	}
	s.logger.Info("department deactivated", zap.Int64("department_id", id))
	return nil
}
