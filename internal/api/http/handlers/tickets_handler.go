package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketWorkflow is the ticket service surface used over HTTP.
type TicketWorkflow interface {
	GetByID(ctx context.Context, id int64) (*domain.TicketDetails, error)
	GetAll(ctx context.Context) ([]domain.TicketDetails, error)
	GetByUser(ctx context.Context, userID int64) ([]domain.TicketDetails, error)
	GetAssignedToUser(ctx context.Context, userID int64) ([]domain.TicketDetails, error)
	GetByDepartment(ctx context.Context, departmentID int64) ([]domain.TicketDetails, error)
	GetByTeam(ctx context.Context, teamID int64) ([]domain.TicketDetails, error)
	GetByStatus(ctx context.Context, statusID int64) ([]domain.TicketDetails, error)
	GetByPriority(ctx context.Context, priorityID int64) ([]domain.TicketDetails, error)
	GetByCategory(ctx context.Context, categoryID int64) ([]domain.TicketDetails, error)
	GetActive(ctx context.Context) ([]domain.TicketDetails, error)
	GetCreatedBetweenDates(ctx context.Context, from, to time.Time) ([]domain.TicketDetails, error)
	Summary(ctx context.Context) (*service.TicketSummary, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)

	Create(ctx context.Context, input service.TicketCreateInput, creatorID int64) (*domain.TicketDetails, error)
	Update(ctx context.Context, id int64, input service.TicketUpdateInput, updaterID int64) (*domain.TicketDetails, error)
	Delete(ctx context.Context, id, actorID int64) error
	UpdateStatus(ctx context.Context, id, statusID, actorID int64) (*domain.TicketDetails, error)
	CloseTicket(ctx context.Context, id, actorID int64) (*domain.TicketDetails, error)
	ReopenTicket(ctx context.Context, id, actorID int64) (*domain.TicketDetails, error)

	AddComment(ctx context.Context, ticketID int64, input service.CommentInput, authorID int64) (*domain.TicketComment, error)
	GetComments(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.TicketComment, error)
	AddAttachment(ctx context.Context, ticketID int64, input service.AttachmentInput, uploaderID int64) (*domain.TicketAttachment, error)
	GetAttachments(ctx context.Context, ticketID int64) ([]domain.TicketAttachment, error)
	SubmitFeedback(ctx context.Context, ticketID int64, input service.FeedbackInput, userID int64) (*domain.TicketFeedback, error)
	GetFeedback(ctx context.Context, ticketID int64) (*domain.TicketFeedback, error)
}

// AssignmentWorkflow moves tickets between agents.
type AssignmentWorkflow interface {
	AssignTicket(ctx context.Context, ticketID, assigneeID, actorID int64) (*domain.TicketDetails, error)
	UnassignTicket(ctx context.Context, ticketID, actorID int64) (*domain.TicketDetails, error)
	ReassignTicket(ctx context.Context, ticketID, newAssigneeID, actorID int64) (*domain.TicketDetails, error)
}

// TicketsHandler serves /api/tickets.
type TicketsHandler struct {
	tickets     TicketWorkflow
	assignments AssignmentWorkflow
	authz       *auth.Authorizer
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets TicketWorkflow, assignments AssignmentWorkflow, authz *auth.Authorizer) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments, authz: authz}
}

// List GET /api/tickets. Callers without read_all only see tickets they raised.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var tickets []domain.TicketDetails
	if auth.Can(c, h.authz, auth.ResourceTickets, auth.ActionReadAll) {
		tickets, err = h.tickets.GetAll(c.UserContext())
	} else {
		tickets, err = h.tickets.GetByUser(c.UserContext(), principal.UserID())
	}
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(tickets, ticketResponse))
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, _, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// Create POST /api/tickets. The creator is always the caller.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), service.TicketCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		PriorityID:   req.PriorityID,
		DepartmentID: req.DepartmentID,
		TeamID:       req.TeamID,
		AssignedToID: req.AssignedToID,
	}, principal.UserID())
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/tickets/%d", ticket.ID), ticketResponse(ticket))
}

// Update PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Update(c.UserContext(), id, service.TicketUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		PriorityID:   req.PriorityID,
		StatusID:     req.StatusID,
		DepartmentID: req.DepartmentID,
		TeamID:       req.TeamID,
		AssignedToID: req.AssignedToID,
	}, principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// Delete DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.UserContext(), id, principal.UserID()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Assign POST /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	return h.assignment(c, func(ctx context.Context, id, actor int64, assignee int64) (*domain.TicketDetails, error) {
		return h.assignments.AssignTicket(ctx, id, assignee, actor)
	})
}

// Reassign POST /api/tickets/:id/reassign.
func (h *TicketsHandler) Reassign(c *fiber.Ctx) error {
	return h.assignment(c, func(ctx context.Context, id, actor int64, assignee int64) (*domain.TicketDetails, error) {
		return h.assignments.ReassignTicket(ctx, id, assignee, actor)
	})
}

// Unassign POST /api/tickets/:id/unassign.
func (h *TicketsHandler) Unassign(c *fiber.Ctx) error {
	return h.action(c, h.assignments.UnassignTicket)
}

// UpdateStatus POST /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	return h.action(c, func(ctx context.Context, id, actor int64) (*domain.TicketDetails, error) {
		return h.tickets.UpdateStatus(ctx, id, req.StatusID, actor)
	})
}

// Close POST /api/tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	return h.action(c, h.tickets.CloseTicket)
}

// Reopen POST /api/tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	return h.action(c, h.tickets.ReopenTicket)
}

func (h *TicketsHandler) assignment(c *fiber.Ctx, fn func(ctx context.Context, id, actor, assignee int64) (*domain.TicketDetails, error)) error {
	var req dto.AssignRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	return h.action(c, func(ctx context.Context, id, actor int64) (*domain.TicketDetails, error) {
		return fn(ctx, id, actor, req.AssigneeID)
	})
}

func (h *TicketsHandler) action(c *fiber.Ctx, fn func(ctx context.Context, id, actor int64) (*domain.TicketDetails, error)) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := fn(c.UserContext(), id, principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// Comments GET /api/tickets/:id/comments. Internal notes are returned only to
// callers allowed to read them.
func (h *TicketsHandler) Comments(c *fiber.Ctx) error {
	ticket, _, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	includeInternal := auth.Can(c, h.authz, auth.ResourceComments, auth.ActionInternal)
	comments, err := h.tickets.GetComments(c.UserContext(), ticket.ID, includeInternal)
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(comments, commentResponse))
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	ticket, principal, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	if req.IsInternal && !auth.Can(c, h.authz, auth.ResourceComments, auth.ActionInternal) {
		return apperrors.NewForbidden("insufficient permissions for internal comments")
	}
	comment, err := h.tickets.AddComment(c.UserContext(), ticket.ID, service.CommentInput{
		Comment:    req.Comment,
		IsInternal: req.IsInternal,
	}, principal.UserID())
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/tickets/%d/comments", ticket.ID), commentResponse(comment))
}

// Attachments GET /api/tickets/:id/attachments.
func (h *TicketsHandler) Attachments(c *fiber.Ctx) error {
	ticket, _, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	attachments, err := h.tickets.GetAttachments(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(attachments, attachmentResponse))
}

// AddAttachment POST /api/tickets/:id/attachments registers file metadata.
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	ticket, principal, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	var req dto.AttachmentRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	attachment, err := h.tickets.AddAttachment(c.UserContext(), ticket.ID, service.AttachmentInput{
		FileName:    req.FileName,
		FilePath:    req.FilePath,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	}, principal.UserID())
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/tickets/%d/attachments", ticket.ID), attachmentResponse(attachment))
}

// Feedback GET /api/tickets/:id/feedback.
func (h *TicketsHandler) Feedback(c *fiber.Ctx) error {
	ticket, _, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	fb, err := h.tickets.GetFeedback(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(feedbackResponse(fb))
}

// SubmitFeedback POST /api/tickets/:id/feedback.
func (h *TicketsHandler) SubmitFeedback(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := dto.Bind(c, &req); err != nil {
		return err
	}
	fb, err := h.tickets.SubmitFeedback(c.UserContext(), id, service.FeedbackInput{Rating: req.Rating, Comment: req.Comment}, principal.UserID())
	if err != nil {
		return err
	}
	return created(c, fmt.Sprintf("/api/tickets/%d/feedback", id), feedbackResponse(fb))
}

// Active GET /api/tickets/active.
func (h *TicketsHandler) Active(c *fiber.Ctx) error {
	tickets, err := h.tickets.GetActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(tickets, ticketResponse))
}

// ByUser GET /api/tickets/user/:userId. Callers may always list their own.
func (h *TicketsHandler) ByUser(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	if userID != principal.UserID() && !auth.Can(c, h.authz, auth.ResourceTickets, auth.ActionReadAll) {
		return apperrors.NewForbidden("insufficient permissions")
	}
	tickets, err := h.tickets.GetByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(tickets, ticketResponse))
}

// ByAssignee GET /api/tickets/assigned/:userId.
func (h *TicketsHandler) ByAssignee(c *fiber.Ctx) error {
	return h.listBy(c, "userId", h.tickets.GetAssignedToUser)
}

// ByDepartment GET /api/tickets/department/:id.
func (h *TicketsHandler) ByDepartment(c *fiber.Ctx) error {
	return h.listBy(c, "id", h.tickets.GetByDepartment)
}

// ByTeam GET /api/tickets/team/:id.
func (h *TicketsHandler) ByTeam(c *fiber.Ctx) error {
	return h.listBy(c, "id", h.tickets.GetByTeam)
}

// ByStatus GET /api/tickets/status/:id.
func (h *TicketsHandler) ByStatus(c *fiber.Ctx) error {
	return h.listBy(c, "id", h.tickets.GetByStatus)
}

// ByPriority GET /api/tickets/priority/:id.
func (h *TicketsHandler) ByPriority(c *fiber.Ctx) error {
	return h.listBy(c, "id", h.tickets.GetByPriority)
}

// ByCategory GET /api/tickets/category/:id.
func (h *TicketsHandler) ByCategory(c *fiber.Ctx) error {
	return h.listBy(c, "id", h.tickets.GetByCategory)
}

// Range GET /api/tickets/range?from=&to=.
func (h *TicketsHandler) Range(c *fiber.Ctx) error {
	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDateEnd(c, "to")
	if err != nil {
		return err
	}
	tickets, err := h.tickets.GetCreatedBetweenDates(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(tickets, ticketResponse))
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	summary, err := h.tickets.Summary(c.UserContext())
	if err != nil {
		return err
	}
	byStatus := make([]dto.StatusCount, 0, len(summary.ByStatus))
	for _, s := range summary.ByStatus {
		byStatus = append(byStatus, dto.StatusCount{StatusID: s.StatusID, StatusName: s.StatusName, Count: s.Count})
	}
	return c.JSON(dto.TicketStatsResponse{Total: summary.Total, Active: summary.Active, ByStatus: byStatus})
}

// CountByUser GET /api/tickets/user/:userId/count.
func (h *TicketsHandler) CountByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	count, err := h.tickets.CountByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.CountResponse{Count: count})
}

func (h *TicketsHandler) listBy(c *fiber.Ctx, param string, fn func(context.Context, int64) ([]domain.TicketDetails, error)) error {
	id, err := paramID(c, param)
	if err != nil {
		return err
	}
	tickets, err := fn(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(mapSlice(tickets, ticketResponse))
}

// visibleTicket loads the ticket from :id and hides it from callers that
// neither raised it, hold it, nor may read every ticket.
func (h *TicketsHandler) visibleTicket(c *fiber.Ctx) (*domain.TicketDetails, *auth.Principal, error) {
	principal, err := currentUser(c)
	if err != nil {
		return nil, nil, err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return nil, nil, err
	}
	ticket, err := h.tickets.GetByID(c.UserContext(), id)
	if err != nil {
		return nil, nil, err
	}
	uid := principal.UserID()
	owns := ticket.CreatedByID == uid || (ticket.AssignedToID != nil && *ticket.AssignedToID == uid)
	if !owns && !auth.Can(c, h.authz, auth.ResourceTickets, auth.ActionReadAll) {
		return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, principal, nil
}
