package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

type FAQCategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

type FAQItemInput struct {
	CategoryID int64
	Question   string
	Answer     string
	IsActive   *bool
}

// FAQDependencies wires FAQService.
type FAQDependencies struct {
	Categories repository.FAQCategoryRepository
	Items      repository.FAQItemRepository
	Users      repository.UserRepository
	Renderer   MarkdownRenderer
	Logger     *zap.Logger
}

// FAQService manages the knowledge base. Answers are stored as markdown and
// rendered to sanitized HTML on every read.
type FAQService struct {
	categories repository.FAQCategoryRepository
	items      repository.FAQItemRepository
	users      repository.UserRepository
	renderer   MarkdownRenderer
	logger     *zap.Logger
}

func NewFAQService(deps FAQDependencies) *FAQService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FAQService{
		categories: deps.Categories,
		items:      deps.Items,
		users:      deps.Users,
		renderer:   deps.Renderer,
		logger:     logger,
	}
}

func (s *FAQService) GetCategory(ctx context.Context, id int64, includeInactive bool) (*domain.FAQCategory, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "faq category", id)
	}
	if !c.IsActive && !includeInactive {
		return nil, apperrors.NewNotFound("faq category", map[string]any{"id": id})
	}
	return c, nil
}

func (s *FAQService) GetCategories(ctx context.Context, activeOnly bool) ([]domain.FAQCategory, error) {
	list, err := s.categories.List(ctx, activeOnly)
	return list, apperrors.MapError(err)
}

func (s *FAQService) CreateCategory(ctx context.Context, input FAQCategoryInput) (*domain.FAQCategory, error) {
	name, err := uniqueName(ctx, s.categories.NameExists, input.Name, 0, "FAQ category name already exists")
	if err != nil {
		return nil, err
	}
	c := &domain.FAQCategory{Name: name, Description: strings.TrimSpace(input.Description), IsActive: true}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, apperrors.MapError(err)
	}
	return c, nil
}

func (s *FAQService) UpdateCategory(ctx context.Context, id int64, input FAQCategoryInput) (*domain.FAQCategory, error) {
	c, err := s.GetCategory(ctx, id, true)
	if err != nil {
		return nil, err
	}
	name, err := uniqueName(ctx, s.categories.NameExists, input.Name, id, "FAQ category name already exists")
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Description = strings.TrimSpace(input.Description)
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, notFoundOr(err, "faq category", id)
	}
	return c, nil
}

func (s *FAQService) DeactivateCategory(ctx context.Context, id int64) error {
	if err := s.categories.SetActive(ctx, id, false); err != nil {
		return notFoundOr(err, "faq category", id)
	}
	return nil
}

func (s *FAQService) GetItem(ctx context.Context, id int64, includeInactive bool) (*domain.FAQItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "faq item", id)
	}
	if !item.IsActive && !includeInactive {
		return nil, apperrors.NewNotFound("faq item", map[string]any{"id": id})
	}
	return item, s.render(item)
}

func (s *FAQService) GetItems(ctx context.Context) ([]domain.FAQItem, error) {
	list, err := s.items.List(ctx, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, s.renderAll(list)
}

func (s *FAQService) GetActiveItems(ctx context.Context) ([]domain.FAQItem, error) {
	list, err := s.items.List(ctx, true)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, s.renderAll(list)
}

func (s *FAQService) GetItemsByCategory(ctx context.Context, categoryID int64, activeOnly bool) ([]domain.FAQItem, error) {
	if _, err := s.GetCategory(ctx, categoryID, !activeOnly); err != nil {
		return nil, err
	}
	list, err := s.items.ListByCategory(ctx, categoryID, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, s.renderAll(list)
}

func (s *FAQService) CreateItem(ctx context.Context, input FAQItemInput, creatorID int64) (*domain.FAQItem, error) {
	creator, ok, err := exists(s.users.GetByID(ctx, creatorID))
	if err != nil {
		return nil, err
	}
	if !activeUser(creator, ok) {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": creatorID})
	}
	item := &domain.FAQItem{CategoryID: input.CategoryID, CreatedByID: creatorID, IsActive: true}
	if err := s.fill(ctx, item, input); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("faq item created", zap.Int64("faq_item_id", item.ID), zap.Int64("category_id", item.CategoryID))
	return item, s.render(item)
}

func (s *FAQService) UpdateItem(ctx context.Context, id int64, input FAQItemInput) (*domain.FAQItem, error) {
	item, err := s.GetItem(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.fill(ctx, item, input); err != nil {
		return nil, err
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, notFoundOr(err, "faq item", id)
	}
	return item, s.render(item)
}

func (s *FAQService) DeactivateItem(ctx context.Context, id int64) error {
	if err := s.items.SetActive(ctx, id, false); err != nil {
		return notFoundOr(err, "faq item", id)
	}
	return nil
}

func (s *FAQService) fill(ctx context.Context, item *domain.FAQItem, input FAQItemInput) error {
	cat, ok, err := exists(s.categories.GetByID(ctx, input.CategoryID))
	if err != nil {
		return err
	}
	if !ok || !cat.IsActive {
		return apperrors.NewValidationError("Invalid or inactive FAQ category", map[string]any{"category_id": input.CategoryID})
	}
	question, err := requireName(input.Question, "Question")
	if err != nil {
		return err
	}
	answer := strings.TrimSpace(input.Answer)
	if answer == "" {
		return apperrors.NewValidationError("Answer is required", map[string]any{"field": "answer"})
	}
	item.CategoryID = input.CategoryID
	item.Question = question
	item.Answer = answer
	return nil
}

func (s *FAQService) render(item *domain.FAQItem) error {
	if s.renderer == nil {
		return nil
	}
	html, err := s.renderer.ToHTML(item.Answer)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("render faq answer: %w", err))
	}
	item.AnswerHTML = html
	return nil
}

func (s *FAQService) renderAll(items []domain.FAQItem) error {
	for i := range items {
		if err := s.render(&items[i]); err != nil {
			return err
		}
	}
	return nil
}
