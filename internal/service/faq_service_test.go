package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/markup"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func newFAQService(s *store) *FAQService {
	return NewFAQService(FAQDependencies{
		Categories: fakeFAQCategories{s},
		Items:      fakeFAQItems{s},
		Users:      fakeUsers{s},
		Renderer:   markup.NewRenderer(),
	})
}

func TestFAQItemsRenderMarkdown(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	faq := newFAQService(s)

	cat, err := faq.CreateCategory(ctx, FAQCategoryInput{Name: "Accounts"})
	require.NoError(t, err)

	item, err := faq.CreateItem(ctx, FAQItemInput{
		CategoryID: cat.ID,
		Question:   "How do I reset my password?",
		Answer:     "Use **Forgot password** <script>alert(1)</script>",
	}, 1)
	require.NoError(t, err)
	assert.Contains(t, item.AnswerHTML, "<strong>Forgot password</strong>")
	assert.NotContains(t, item.AnswerHTML, "<script>")
	assert.Equal(t, int64(1), item.CreatedByID)

	byCat, err := faq.GetItemsByCategory(ctx, cat.ID, true)
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.NotEmpty(t, byCat[0].AnswerHTML)
}

func TestFAQItemRequiresActiveCategoryAndCreator(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	faq := newFAQService(s)

	cat, err := faq.CreateCategory(ctx, FAQCategoryInput{Name: "Devices"})
	require.NoError(t, err)

	_, err = faq.CreateItem(ctx, FAQItemInput{CategoryID: cat.ID, Question: "Q", Answer: "A"}, 9)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = faq.CreateItem(ctx, FAQItemInput{CategoryID: cat.ID, Question: "Q", Answer: " "}, 1)
	assert.True(t, apperrors.IsValidation(err))

	require.NoError(t, faq.DeactivateCategory(ctx, cat.ID))
	_, err = faq.CreateItem(ctx, FAQItemInput{CategoryID: cat.ID, Question: "Q", Answer: "A"}, 1)
	require.Error(t, err)
	assert.Equal(t, "Invalid or inactive FAQ category", apperrors.ToDomainError(err).Message)
}

func TestFAQDeactivateItem(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	faq := newFAQService(s)

	cat, err := faq.CreateCategory(ctx, FAQCategoryInput{Name: "VPN"})
	require.NoError(t, err)
	item, err := faq.CreateItem(ctx, FAQItemInput{CategoryID: cat.ID, Question: "Q", Answer: "A"}, 1)
	require.NoError(t, err)

	require.NoError(t, faq.DeactivateItem(ctx, item.ID))
	_, err = faq.GetItem(ctx, item.ID, false)
	assert.True(t, apperrors.IsNotFound(err))

	active, err := faq.GetActiveItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := faq.GetItems(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
