package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// UserDirectory is the user service surface used over HTTP.
type UserDirectory interface {
	Create(ctx context.Context, input service.CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id int64, input service.UpdateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	GetActive(ctx context.Context) ([]domain.User, error)
	GetRoles(ctx context.Context) ([]domain.Role, error)
	Deactivate(ctx context.Context, id int64) error
	AssignRole(ctx context.Context, userID int64, grant service.RoleGrant) (*domain.User, error)
	RemoveRole(ctx context.Context, userID int64, roleName string) (*domain.User, error)
}

// UsersHandler serves /api/users.
type UsersHandler struct {
	users UserDirectory
}

func NewUsersHandler(users UserDirectory) *UsersHandler {
	return &UsersHandler{users: users}
}

// List GET /api/users[?active=true].
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var (
		users []domain.User
		err   error
	)
	if activeOnly(c) {
		users, err = h.users.GetActive(c.UserContext())
	} else {
		users, err = h.users.GetAll(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(users, userResponse))
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}

// Me GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(userResponse(principal.User))
}

func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.Create(c.UserContext(), service.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/users/%d", user.ID), userResponse(user))
}

func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), id, service.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}

func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Deactivate(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Roles GET /api/users/roles lists every assignable role.
func (h *UsersHandler) Roles(c *fiber.Ctx) error {
	roles, err := h.users.GetRoles(c.UserContext())
	if err != nil {
		return err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return c.JSON(names)
}

// AssignRole POST /api/users/:id/roles.
func (h *UsersHandler) AssignRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RoleRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.AssignRole(c.UserContext(), id, service.RoleGrant{
		RoleName:     req.Role,
		DepartmentID: req.DepartmentID,
		TeamID:       req.TeamID,
	})
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}

// RemoveRole DELETE /api/users/:id/roles/:role.
func (h *UsersHandler) RemoveRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.RemoveRole(c.UserContext(), id, c.Params("role"))
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}
