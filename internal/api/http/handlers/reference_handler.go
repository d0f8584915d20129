package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

type DepartmentCatalog interface {
	GetByID(ctx context.Context, id int64, includeInactive bool) (*domain.Department, error)
	GetAll(ctx context.Context) ([]domain.Department, error)
	GetActive(ctx context.Context) ([]domain.Department, error)
	Create(ctx context.Context, input service.DepartmentInput) (*domain.Department, error)
	Update(ctx context.Context, id int64, input service.DepartmentInput) (*domain.Department, error)
	Deactivate(ctx context.Context, id int64) error
}

type TeamCatalog interface {
	GetByID(ctx context.Context, id int64, includeInactive bool) (*domain.Team, error)
	GetAll(ctx context.Context) ([]domain.Team, error)
	GetActive(ctx context.Context) ([]domain.Team, error)
	GetByDepartment(ctx context.Context, departmentID int64) ([]domain.Team, error)
	Create(ctx context.Context, input service.TeamInput) (*domain.Team, error)
	Update(ctx context.Context, id int64, input service.TeamInput) (*domain.Team, error)
	Deactivate(ctx context.Context, id int64) error
}

type CategoryCatalog interface {
	GetByID(ctx context.Context, id int64, includeInactive bool) (*domain.TicketCategory, error)
	GetAll(ctx context.Context) ([]domain.TicketCategory, error)
	GetActive(ctx context.Context) ([]domain.TicketCategory, error)
	Create(ctx context.Context, input service.CategoryInput) (*domain.TicketCategory, error)
	Update(ctx context.Context, id int64, input service.CategoryInput) (*domain.TicketCategory, error)
	Deactivate(ctx context.Context, id int64) error
}

type PriorityCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.TicketPriority, error)
	GetAll(ctx context.Context) ([]domain.TicketPriority, error)
	GetAllOrderedByName(ctx context.Context) ([]domain.TicketPriority, error)
	Create(ctx context.Context, input service.PriorityInput) (*domain.TicketPriority, error)
	Update(ctx context.Context, id int64, input service.PriorityInput) (*domain.TicketPriority, error)
	Delete(ctx context.Context, id int64) error
}

type StatusCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.TicketStatus, error)
	GetAll(ctx context.Context) ([]domain.TicketStatus, error)
	GetAllOrderedByName(ctx context.Context) ([]domain.TicketStatus, error)
	Create(ctx context.Context, input service.StatusInput) (*domain.TicketStatus, error)
	Update(ctx context.Context, id int64, input service.StatusInput) (*domain.TicketStatus, error)
	Delete(ctx context.Context, id int64) error
}

// ReferenceHandler serves departments, teams and ticket taxonomies.
type ReferenceHandler struct {
	departments DepartmentCatalog
	teams       TeamCatalog
	categories  CategoryCatalog
	priorities  PriorityCatalog
	statuses    StatusCatalog
	authz       *auth.Authorizer
}

// ReferenceCatalogs bundles the reference services.
type ReferenceCatalogs struct {
	Departments DepartmentCatalog
	Teams       TeamCatalog
	Categories  CategoryCatalog
	Priorities  PriorityCatalog
	Statuses    StatusCatalog
}

func NewReferenceHandler(catalogs ReferenceCatalogs, authz *auth.Authorizer) *ReferenceHandler {
	return &ReferenceHandler{
		departments: catalogs.Departments,
		teams:       catalogs.Teams,
		categories:  catalogs.Categories,
		priorities:  catalogs.Priorities,
		statuses:    catalogs.Statuses,
		authz:       authz,
	}
}

// seesInactive reports whether deactivated records are visible to the caller.
func (h *ReferenceHandler) seesInactive(c *fiber.Ctx) bool {
	return auth.Can(c, h.authz, auth.ResourceReference, auth.ActionUpdate)
}

func activeOnly(c *fiber.Ctx) bool {
	return c.QueryBool("active", false)
}

// ListDepartments GET /api/departments[?active=true].
func (h *ReferenceHandler) ListDepartments(c *fiber.Ctx) error {
	var (
		list []domain.Department
		err  error
	)
	if activeOnly(c) || !h.seesInactive(c) {
		list, err = h.departments.GetActive(c.UserContext())
	} else {
		list, err = h.departments.GetAll(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(list, departmentResponse))
}

func (h *ReferenceHandler) GetDepartment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	dept, err := h.departments.GetByID(c.UserContext(), id, h.seesInactive(c))
	if err != nil {
		return err
	}
	return c.JSON(departmentResponse(dept))
}

func (h *ReferenceHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	dept, err := h.departments.Create(c.UserContext(), service.DepartmentInput{Name: req.Name, Description: req.Description, IsActive: req.IsActive})
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/departments/%d", dept.ID), departmentResponse(dept))
}

func (h *ReferenceHandler) UpdateDepartment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DepartmentRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	dept, err := h.departments.Update(c.UserContext(), id, service.DepartmentInput{Name: req.Name, Description: req.Description, IsActive: req.IsActive})
	if err != nil {
		return err
	}
	return c.JSON(departmentResponse(dept))
}

func (h *ReferenceHandler) DeleteDepartment(c *fiber.Ctx) error {
	return h.remove(c, h.departments.Deactivate)
}

// DepartmentTeams GET /api/departments/:id/teams.
func (h *ReferenceHandler) DepartmentTeams(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	teams, err := h.teams.GetByDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(teams, teamResponse))
}

func (h *ReferenceHandler) ListTeams(c *fiber.Ctx) error {
	var (
		list []domain.Team
		err  error
	)
	if activeOnly(c) || !h.seesInactive(c) {
		list, err = h.teams.GetActive(c.UserContext())
	} else {
		list, err = h.teams.GetAll(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(list, teamResponse))
}

func (h *ReferenceHandler) GetTeam(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	team, err := h.teams.GetByID(c.UserContext(), id, h.seesInactive(c))
	if err != nil {
		return err
	}
	return c.JSON(teamResponse(team))
}

func (h *ReferenceHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	team, err := h.teams.Create(c.UserContext(), teamInput(req))
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/teams/%d", team.ID), teamResponse(team))
}

func (h *ReferenceHandler) UpdateTeam(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TeamRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	team, err := h.teams.Update(c.UserContext(), id, teamInput(req))
	if err != nil {
		return err
	}
	return c.JSON(teamResponse(team))
}

func (h *ReferenceHandler) DeleteTeam(c *fiber.Ctx) error {
	return h.remove(c, h.teams.Deactivate)
}

func teamInput(req dto.TeamRequest) service.TeamInput {
	return service.TeamInput{DepartmentID: req.DepartmentID, Name: req.Name, Description: req.Description, IsActive: req.IsActive}
}

func (h *ReferenceHandler) ListCategories(c *fiber.Ctx) error {
	var (
		list []domain.TicketCategory
		err  error
	)
	if activeOnly(c) || !h.seesInactive(c) {
		list, err = h.categories.GetActive(c.UserContext())
	} else {
		list, err = h.categories.GetAll(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(list, categoryResponse))
}

func (h *ReferenceHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.categories.GetByID(c.UserContext(), id, h.seesInactive(c))
	if err != nil {
		return err
	}
	return c.JSON(categoryResponse(cat))
}

func (h *ReferenceHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	cat, err := h.categories.Create(c.UserContext(), service.CategoryInput{Name: req.Name, Description: req.Description, IsActive: req.IsActive})
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/ticket-categories/%d", cat.ID), categoryResponse(cat))
}

func (h *ReferenceHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	cat, err := h.categories.Update(c.UserContext(), id, service.CategoryInput{Name: req.Name, Description: req.Description, IsActive: req.IsActive})
	if err != nil {
		return err
	}
	return c.JSON(categoryResponse(cat))
}

func (h *ReferenceHandler) DeleteCategory(c *fiber.Ctx) error {
	return h.remove(c, h.categories.Deactivate)
}

// ListPriorities GET /api/ticket-priorities[?sort=name].
func (h *ReferenceHandler) ListPriorities(c *fiber.Ctx) error {
	var (
		list []domain.TicketPriority
		err  error
	)
	if c.Query("sort") == "name" {
		list, err = h.priorities.GetAllOrderedByName(c.UserContext())
	} else {
		list, err = h.priorities.GetAll(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(list, priorityResponse))
}

func (h *ReferenceHandler) GetPriority(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.priorities.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(priorityResponse(p))
}

func (h *ReferenceHandler) CreatePriority(c *fiber.Ctx) error {
	var req dto.PriorityRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.priorities.Create(c.UserContext(), service.PriorityInput{Name: req.Name, Description: req.Description, Level: req.Level})
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/ticket-priorities/%d", p.ID), priorityResponse(p))
}

func (h *ReferenceHandler) UpdatePriority(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PriorityRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.priorities.Update(c.UserContext(), id, service.PriorityInput{Name: req.Name, Description: req.Description, Level: req.Level})
	if err != nil {
		return err
	}
	return c.JSON(priorityResponse(p))
}

func (h *ReferenceHandler) DeletePriority(c *fiber.Ctx) error {
	return h.remove(c, h.priorities.Delete)
}

// ListStatuses GET /api/ticket-statuses[?sort=name].
func (h *ReferenceHandler) ListStatuses(c *fiber.Ctx) error {
	var (
		list []domain.TicketStatus
		err  error
	)
	if c.Query("sort") == "name" {
		list, err = h.statuses.GetAllOrderedByName(c.UserContext())
	} else {
		list, err = h.statuses.GetAll(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(list, statusResponse))
}

func (h *ReferenceHandler) GetStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	s, err := h.statuses.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(statusResponse(s))
}

func (h *ReferenceHandler) CreateStatus(c *fiber.Ctx) error {
	var req dto.TicketStatusRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	s, err := h.statuses.Create(c.UserContext(), statusInput(req))
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/ticket-statuses/%d", s.ID), statusResponse(s))
}

func (h *ReferenceHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TicketStatusRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	s, err := h.statuses.Update(c.UserContext(), id, statusInput(req))
	if err != nil {
		return err
	}
	return c.JSON(statusResponse(s))
}

func (h *ReferenceHandler) DeleteStatus(c *fiber.Ctx) error {
	return h.remove(c, h.statuses.Delete)
}

func statusInput(req dto.TicketStatusRequest) service.StatusInput {
	return service.StatusInput{Name: req.Name, Description: req.Description, IsTerminal: req.IsTerminal, Color: req.Color}
}

func (h *ReferenceHandler) remove(c *fiber.Ctx, fn func(context.Context, int64) error) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := fn(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
