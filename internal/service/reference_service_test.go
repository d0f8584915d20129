package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func TestTeamNamesAreUniquePerDepartment(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	teams := NewTeamService(fakeTeams{s}, fakeDepartments{s}, nil)

	alpha, err := teams.Create(ctx, TeamInput{DepartmentID: 1, Name: "Alpha"})
	require.NoError(t, err)

	_, err = teams.Create(ctx, TeamInput{DepartmentID: 1, Name: "alpha"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "Team name already exists in this department", apperrors.ToDomainError(err).Message)

	other, err := teams.Create(ctx, TeamInput{DepartmentID: 2, Name: "Alpha"})
	require.NoError(t, err)
	assert.NotEqual(t, alpha.ID, other.ID)

	_, err = teams.Update(ctx, alpha.ID, TeamInput{DepartmentID: 1, Name: "Alpha", Description: "renamed nothing"})
	require.NoError(t, err, "keeping its own name is allowed")

	_, err = teams.Create(ctx, TeamInput{DepartmentID: 3, Name: "Beta"})
	assert.True(t, apperrors.IsValidation(err), "inactive department")

	byDept, err := teams.GetByDepartment(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byDept, 2)

	_, err = teams.GetByDepartment(ctx, 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestNameUniquenessAcrossReferenceData(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()

	depts := NewDepartmentService(fakeDepartments{s}, nil)
	cats := NewCategoryService(fakeCategories{s}, nil)
	prios := NewPriorityService(fakePriorities{s}, fakeTickets{s}, nil)
	statuses := NewStatusService(fakeStatuses{s}, fakeTickets{s}, nil)
	faq := NewFAQService(FAQDependencies{Categories: fakeFAQCategories{s}, Items: fakeFAQItems{s}, Users: fakeUsers{s}})

	cases := []struct {
		name      string
		duplicate func() error
		keepOwn   func() error
		message   string
	}{
		{
			name:      "department",
			duplicate: func() error { _, err := depts.Create(ctx, DepartmentInput{Name: "it"}); return err },
			keepOwn:   func() error { _, err := depts.Update(ctx, 1, DepartmentInput{Name: "IT"}); return err },
			message:   "Department name already exists",
		},
		{
			name:      "category",
			duplicate: func() error { _, err := cats.Create(ctx, CategoryInput{Name: "HARDWARE"}); return err },
			keepOwn:   func() error { _, err := cats.Update(ctx, 1, CategoryInput{Name: "hardware"}); return err },
			message:   "Category name already exists",
		},
		{
			name:      "priority",
			duplicate: func() error { _, err := prios.Update(ctx, 2, PriorityInput{Name: "low"}); return err },
			keepOwn:   func() error { _, err := prios.Update(ctx, 1, PriorityInput{Name: "Low", Level: 1}); return err },
			message:   "Priority name already exists",
		},
		{
			name:      "status",
			duplicate: func() error { _, err := statuses.Create(ctx, StatusInput{Name: "open"}); return err },
			keepOwn:   func() error { _, err := statuses.Update(ctx, 1, StatusInput{Name: "Open"}); return err },
			message:   "Status name already exists",
		},
		{
			name: "faq category",
			duplicate: func() error {
				if _, err := faq.CreateCategory(ctx, FAQCategoryInput{Name: "Accounts"}); err != nil {
					return err
				}
				_, err := faq.CreateCategory(ctx, FAQCategoryInput{Name: "ACCOUNTS"})
				return err
			},
			keepOwn: func() error {
				cats, _ := faq.GetCategories(ctx, false)
				_, err := faq.UpdateCategory(ctx, cats[0].ID, FAQCategoryInput{Name: "Accounts"})
				return err
			},
			message: "FAQ category name already exists",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.duplicate()
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tc.message, apperrors.ToDomainError(err).Message)
			assert.NoError(t, tc.keepOwn())
		})
	}
}

func TestBlankNamesRejected(t *testing.T) {
	s := newStore()
	_, err := NewDepartmentService(fakeDepartments{s}, nil).Create(context.Background(), DepartmentInput{Name: "  "})
	require.Error(t, err)
	assert.Equal(t, "Name is required", apperrors.ToDomainError(err).Message)
}

func TestDeactivatedDepartmentIsHidden(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.seedReference()
	depts := NewDepartmentService(fakeDepartments{s}, nil)

	require.NoError(t, depts.Deactivate(ctx, 2))

	_, err := depts.GetByID(ctx, 2, false)
	assert.True(t, apperrors.IsNotFound(err))
	dept, err := depts.GetByID(ctx, 2, true)
	require.NoError(t, err)
	assert.False(t, dept.IsActive)

	active, err := depts.GetActive(ctx)
	require.NoError(t, err)
	for _, d := range active {
		assert.True(t, d.IsActive)
	}
	all, err := depts.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	assert.True(t, apperrors.IsNotFound(depts.Deactivate(ctx, 404)))
}

func TestPriorityAndStatusDeletionGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.store
	prios := NewPriorityService(fakePriorities{s}, fakeTickets{s}, nil)
	statuses := NewStatusService(fakeStatuses{s}, fakeTickets{s}, nil)

	_, err := f.tickets.Create(ctx, validCreate(), 1)
	require.NoError(t, err)

	err = prios.Delete(ctx, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.NoError(t, prios.Delete(ctx, 2))
	assert.True(t, apperrors.IsNotFound(prios.Delete(ctx, 2)))

	err = statuses.Delete(ctx, domain.DefaultStatusID)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.NoError(t, statuses.Delete(ctx, 2))
}

func TestStatusTerminalFlag(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	statuses := NewStatusService(fakeStatuses{s}, fakeTickets{s}, nil)

	inferred, err := statuses.Create(ctx, StatusInput{Name: "Resolved - duplicate"})
	require.NoError(t, err)
	assert.True(t, inferred.IsTerminal)

	open, err := statuses.Create(ctx, StatusInput{Name: "Waiting on customer"})
	require.NoError(t, err)
	assert.False(t, open.IsTerminal)

	explicit := true
	done, err := statuses.Create(ctx, StatusInput{Name: "Done", IsTerminal: &explicit})
	require.NoError(t, err)
	assert.True(t, done.IsTerminal)

	updated, err := statuses.Update(ctx, done.ID, StatusInput{Name: "Done", Color: "#00ff00"})
	require.NoError(t, err)
	assert.True(t, updated.IsTerminal, "update without a flag keeps the stored one")
	assert.Equal(t, "#00ff00", updated.Color)

	ordered, err := statuses.GetAllOrderedByName(ctx)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, "Done", ordered[0].Name)
}

func TestStatusNamedClosedMustBeTerminal(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	statuses := NewStatusService(fakeStatuses{s}, fakeTickets{s}, nil)
	no := false

	_, err := statuses.Create(ctx, StatusInput{Name: "Closed - won't fix", IsTerminal: &no})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	pending, err := statuses.Create(ctx, StatusInput{Name: "Pending", IsTerminal: &no})
	require.NoError(t, err)
	_, err = statuses.Update(ctx, pending.ID, StatusInput{Name: "Resolved upstream", IsTerminal: &no})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	renamed, err := statuses.Update(ctx, pending.ID, StatusInput{Name: "Resolved upstream"})
	require.NoError(t, err)
	assert.True(t, renamed.IsTerminal, "an unused status renamed to a closing name becomes terminal")
}

func TestStatusTerminalFlagFrozenWhileInUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.store
	statuses := NewStatusService(fakeStatuses{s}, fakeTickets{s}, nil)

	ticket, err := f.tickets.Create(ctx, validCreate(), 1)
	require.NoError(t, err)
	require.Nil(t, ticket.ClosedAt)

	yes := true
	_, err = statuses.Update(ctx, domain.DefaultStatusID, StatusInput{Name: "Open", IsTerminal: &yes})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = statuses.Update(ctx, domain.DefaultStatusID, StatusInput{Name: "Closed for intake"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err), "a rename that would make the status terminal is rejected")

	stored, err := statuses.GetByID(ctx, domain.DefaultStatusID)
	require.NoError(t, err)
	assert.Equal(t, "Open", stored.Name)
	assert.False(t, stored.IsTerminal)

	kept, err := statuses.Update(ctx, domain.DefaultStatusID, StatusInput{Name: "New", Color: "#123456"})
	require.NoError(t, err)
	assert.False(t, kept.IsTerminal)

	free, err := statuses.Update(ctx, 2, StatusInput{Name: "In Progress", IsTerminal: &yes})
	require.NoError(t, err)
	assert.True(t, free.IsTerminal, "unused statuses may change the flag")
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	cats := NewCategoryService(fakeCategories{s}, nil)

	c, err := cats.Create(ctx, CategoryInput{Name: "Network", Description: " vpn "})
	require.NoError(t, err)
	assert.Equal(t, "vpn", c.Description)

	require.NoError(t, cats.Deactivate(ctx, c.ID))
	_, err = cats.GetByID(ctx, c.ID, false)
	assert.True(t, apperrors.IsNotFound(err))

	active := true
	c, err = cats.Update(ctx, c.ID, CategoryInput{Name: "Network", IsActive: &active})
	require.NoError(t, err)
	assert.True(t, c.IsActive)
}
