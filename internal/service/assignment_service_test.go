package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func TestAssignmentChangesLeaveOneNoteEach(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, err := f.tickets.Create(ctx, validCreate(), 1)
	require.NoError(t, err)

	steps := []struct {
		name string
		run  func() (*domain.TicketDetails, error)
		note string
	}{
		{"assign", func() (*domain.TicketDetails, error) { return f.assignments.AssignTicket(ctx, created.ID, 2, 1) }, "Ticket assigned to Bob Jones"},
		{"reassign", func() (*domain.TicketDetails, error) { return f.assignments.ReassignTicket(ctx, created.ID, 3, 1) }, "Ticket reassigned from Bob Jones to Carol White"},
		{"unassign", func() (*domain.TicketDetails, error) { return f.assignments.UnassignTicket(ctx, created.ID, 1) }, "Ticket unassigned"},
		{"reassign from nobody", func() (*domain.TicketDetails, error) { return f.assignments.ReassignTicket(ctx, created.ID, 2, 1) }, "Ticket reassigned from Unassigned to Bob Jones"},
	}

	// The clock never moves, so every update must still advance updated_at.
	previous := created.UpdatedAt
	for i, step := range steps {
		before := len(f.store.commentsFor(created.ID))
		details, err := step.run()
		require.NoError(t, err, step.name)

		comments := f.store.commentsFor(created.ID)
		require.Len(t, comments, before+1, step.name)
		last := comments[len(comments)-1]
		assert.Equal(t, step.note, last.Comment, step.name)
		assert.True(t, last.IsInternal, step.name)
		assert.Equal(t, int64(1), last.UserID, step.name)

		assert.True(t, details.UpdatedAt.After(previous), "step %d must bump updated_at", i)
		previous = details.UpdatedAt
	}
	assert.Equal(t, 4, f.tx.calls, "one transaction per assignment change")
}

func TestAssignmentPublishesEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, err := f.tickets.Create(ctx, validCreate(), 1)
	require.NoError(t, err)

	_, err = f.assignments.AssignTicket(ctx, created.ID, 2, 1)
	require.NoError(t, err)
	_, err = f.assignments.UnassignTicket(ctx, created.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketUnassigned,
	}, f.dispatcher.types())
}

func TestAssignRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, err := f.tickets.Create(ctx, validCreate(), 1)
	require.NoError(t, err)

	_, err = f.assignments.AssignTicket(ctx, created.ID, 9, 1)
	require.Error(t, err)
	assert.Equal(t, "Cannot assign a ticket to an inactive user", apperrors.ToDomainError(err).Message)

	_, err = f.assignments.AssignTicket(ctx, created.ID, 404, 1)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.assignments.AssignTicket(ctx, 404, 2, 1)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.assignments.UnassignTicket(ctx, created.ID, 404)
	assert.True(t, apperrors.IsNotFound(err))

	assert.Empty(t, f.store.commentsFor(created.ID))
}

func TestAssignmentRollsBackWithoutAuditNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, err := f.tickets.Create(ctx, validCreate(), 1)
	require.NoError(t, err)

	f.store.failCommentCreate = errors.New("connection reset")
	_, err = f.assignments.AssignTicket(ctx, created.ID, 2, 1)
	require.Error(t, err)

	after, err := f.tickets.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, after.AssignedToID, "assignment must not persist without its audit note")
}
