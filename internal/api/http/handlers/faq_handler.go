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

// KnowledgeBase is the FAQ service surface used over HTTP.
type KnowledgeBase interface {
	GetCategory(ctx context.Context, id int64, includeInactive bool) (*domain.FAQCategory, error)
	GetCategories(ctx context.Context, activeOnly bool) ([]domain.FAQCategory, error)
	CreateCategory(ctx context.Context, input service.FAQCategoryInput) (*domain.FAQCategory, error)
	UpdateCategory(ctx context.Context, id int64, input service.FAQCategoryInput) (*domain.FAQCategory, error)
	DeactivateCategory(ctx context.Context, id int64) error

	GetItem(ctx context.Context, id int64, includeInactive bool) (*domain.FAQItem, error)
	GetItems(ctx context.Context) ([]domain.FAQItem, error)
	GetActiveItems(ctx context.Context) ([]domain.FAQItem, error)
	GetItemsByCategory(ctx context.Context, categoryID int64, activeOnly bool) ([]domain.FAQItem, error)
	CreateItem(ctx context.Context, input service.FAQItemInput, creatorID int64) (*domain.FAQItem, error)
	UpdateItem(ctx context.Context, id int64, input service.FAQItemInput) (*domain.FAQItem, error)
	DeactivateItem(ctx context.Context, id int64) error
}

// FAQHandler serves /api/faq. Readers see active entries only; writers also
// see deactivated ones.
type FAQHandler struct {
	faq   KnowledgeBase
	authz *auth.Authorizer
}

func NewFAQHandler(faq KnowledgeBase, authz *auth.Authorizer) *FAQHandler {
	return &FAQHandler{faq: faq, authz: authz}
}

func (h *FAQHandler) editor(c *fiber.Ctx) bool {
	return auth.Can(c, h.authz, auth.ResourceFAQ, auth.ActionWrite)
}

func (h *FAQHandler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.faq.GetCategories(c.UserContext(), activeOnly(c) || !h.editor(c))
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(cats, faqCategoryResponse))
}

func (h *FAQHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.faq.GetCategory(c.UserContext(), id, h.editor(c))
	if err != nil {
		return err
	}
	return c.JSON(faqCategoryResponse(cat))
}

// CategoryItems GET /api/faq/categories/:id/items.
func (h *FAQHandler) CategoryItems(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.faq.GetItemsByCategory(c.UserContext(), id, activeOnly(c) || !h.editor(c))
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(items, faqItemResponse))
}

func (h *FAQHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.FAQCategoryRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	cat, err := h.faq.CreateCategory(c.UserContext(), service.FAQCategoryInput{Name: req.Name, Description: req.Description, IsActive: req.IsActive})
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/faq/categories/%d", cat.ID), faqCategoryResponse(cat))
}

func (h *FAQHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.FAQCategoryRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	cat, err := h.faq.UpdateCategory(c.UserContext(), id, service.FAQCategoryInput{Name: req.Name, Description: req.Description, IsActive: req.IsActive})
	if err != nil {
		return err
	}
	return c.JSON(faqCategoryResponse(cat))
}

func (h *FAQHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.faq.DeactivateCategory(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FAQHandler) ListItems(c *fiber.Ctx) error {
	var (
		items []domain.FAQItem
		err   error
	)
	if activeOnly(c) || !h.editor(c) {
		items, err = h.faq.GetActiveItems(c.UserContext())
	} else {
		items, err = h.faq.GetItems(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(items, faqItemResponse))
}

func (h *FAQHandler) GetItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.faq.GetItem(c.UserContext(), id, h.editor(c))
	if err != nil {
		return err
	}
	return c.JSON(faqItemResponse(item))
}

// CreateItem POST /api/faq/items. The caller is recorded as author.
func (h *FAQHandler) CreateItem(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.FAQItemRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	item, err := h.faq.CreateItem(c.UserContext(), faqItemInput(req), principal.UserID())
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/faq/items/%d", item.ID), faqItemResponse(item))
}

func (h *FAQHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.FAQItemRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	item, err := h.faq.UpdateItem(c.UserContext(), id, faqItemInput(req))
	if err != nil {
		return err
	}
	return c.JSON(faqItemResponse(item))
}

func (h *FAQHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.faq.DeactivateItem(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func faqItemInput(req dto.FAQItemRequest) service.FAQItemInput {
	return service.FAQItemInput{CategoryID: req.CategoryID, Question: req.Question, Answer: req.Answer, IsActive: req.IsActive}
}
