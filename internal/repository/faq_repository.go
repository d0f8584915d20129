package repository

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// FAQCategoryRepository persists knowledge base categories.
type FAQCategoryRepository interface {
	Create(ctx context.Context, c *domain.FAQCategory) error
	Update(ctx context.Context, c *domain.FAQCategory) error
	GetByID(ctx context.Context, id int64) (*domain.FAQCategory, error)
	List(ctx context.Context, activeOnly bool) ([]domain.FAQCategory, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// FAQItemRepository persists knowledge base entries.
type FAQItemRepository interface {
	Create(ctx context.Context, item *domain.FAQItem) error
	Update(ctx context.Context, item *domain.FAQItem) error
	GetByID(ctx context.Context, id int64) (*domain.FAQItem, error)
	List(ctx context.Context, activeOnly bool) ([]domain.FAQItem, error)
	ListByCategory(ctx context.Context, categoryID int64, activeOnly bool) ([]domain.FAQItem, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

var (
	faqCategoryColumns = []string{"id", "name", "description", "is_active", "created_at", "updated_at"}
	faqItemColumns     = []string{"id", "category_id", "question", "answer", "created_by_id", "is_active", "created_at", "updated_at"}
)

type faqCategoryRepository struct{ base }

func NewFAQCategoryRepository(db persistence.Querier) FAQCategoryRepository {
	return &faqCategoryRepository{base{db: db}}
}

func (r *faqCategoryRepository) Create(ctx context.Context, c *domain.FAQCategory) error {
	stmt := psql.Insert("faq_categories").
		Columns("name", "description", "is_active").
		Values(c.Name, c.Description, c.IsActive).
		Suffix("RETURNING id, created_at, updated_at")
	return insertReturning(ctx, r.q(ctx), stmt, &c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *faqCategoryRepository) Update(ctx context.Context, c *domain.FAQCategory) error {
	stmt := psql.Update("faq_categories").
		Set("name", c.Name).
		Set("description", c.Description).
		Set("is_active", c.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": c.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *faqCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.FAQCategory, error) {
	stmt := psql.Select(faqCategoryColumns...).From("faq_categories").Where(squirrel.Eq{"id": id})
	return getOne[domain.FAQCategory](ctx, r.q(ctx), stmt)
}

func (r *faqCategoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.FAQCategory, error) {
	stmt := psql.Select(faqCategoryColumns...).From("faq_categories").OrderBy("name")
	if activeOnly {
		stmt = stmt.Where(squirrel.Eq{"is_active": true})
	}
	return selectAll[domain.FAQCategory](ctx, r.q(ctx), stmt)
}

func (r *faqCategoryRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, r.q(ctx), "faq_categories", name, excludeID, nil)
}

func (r *faqCategoryRepository) SetActive(ctx context.Context, id int64, active bool) error {
	stmt := psql.Update("faq_categories").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}

type faqItemRepository struct{ base }

func NewFAQItemRepository(db persistence.Querier) FAQItemRepository {
	return &faqItemRepository{base{db: db}}
}

func (r *faqItemRepository) Create(ctx context.Context, item *domain.FAQItem) error {
	stmt := psql.Insert("faq_items").
		Columns("category_id", "question", "answer", "created_by_id", "is_active").
		Values(item.CategoryID, item.Question, item.Answer, item.CreatedByID, item.IsActive).
		Suffix("RETURNING id, created_at, updated_at")
	return insertReturning(ctx, r.q(ctx), stmt, &item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *faqItemRepository) Update(ctx context.Context, item *domain.FAQItem) error {
	stmt := psql.Update("faq_items").
		Set("category_id", item.CategoryID).
		Set("question", item.Question).
		Set("answer", item.Answer).
		Set("is_active", item.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": item.ID})
	return execAffecting(ctx, r.q(ctx), stmt)
}

func (r *faqItemRepository) GetByID(ctx context.Context, id int64) (*domain.FAQItem, error) {
	stmt := psql.Select(faqItemColumns...).From("faq_items").Where(squirrel.Eq{"id": id})
	return getOne[domain.FAQItem](ctx, r.q(ctx), stmt)
}

func (r *faqItemRepository) List(ctx context.Context, activeOnly bool) ([]domain.FAQItem, error) {
	stmt := psql.Select(faqItemColumns...).From("faq_items").OrderBy("category_id", "id")
	if activeOnly {
		stmt = stmt.Where(squirrel.Eq{"is_active": true})
	}
	return selectAll[domain.FAQItem](ctx, r.q(ctx), stmt)
}

func (r *faqItemRepository) ListByCategory(ctx context.Context, categoryID int64, activeOnly bool) ([]domain.FAQItem, error) {
	stmt := psql.Select(faqItemColumns...).From("faq_items").
		Where(squirrel.Eq{"category_id": categoryID}).
		OrderBy("id")
	if activeOnly {
		stmt = stmt.Where(squirrel.Eq{"is_active": true})
	}
	return selectAll[domain.FAQItem](ctx, r.q(ctx), stmt)
}

func (r *faqItemRepository) SetActive(ctx context.Context, id int64, active bool) error {
	stmt := psql.Update("faq_items").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	return execAffecting(ctx, r.q(ctx), stmt)
}
