package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("Invalid %s", name), map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func currentUser(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

// created answers 201 with a Location pointing at the new resource.
func created(c *fiber.Ctx, location string, body any) error {
	c.Location(location)
	return c.Status(fiber.StatusCreated).JSON(body)
}

func queryDate(c *fiber.Ctx, key string) (time.Time, error) {
	t, _, err := parseQueryDate(c, key)
	return t, err
}

// queryDateEnd reads an inclusive upper bound. A bare date covers the whole day.
func queryDateEnd(c *fiber.Ctx, key string) (time.Time, error) {
	t, dateOnly, err := parseQueryDate(c, key)
	if err != nil || !dateOnly {
		return t, err
	}
	return t.AddDate(0, 0, 1).Add(-time.Microsecond), nil
}

func parseQueryDate(c *fiber.Ctx, key string) (time.Time, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false, apperrors.NewValidationError(fmt.Sprintf("%s is required", key), nil)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false, apperrors.NewValidationError(fmt.Sprintf("%s must be an RFC3339 timestamp or YYYY-MM-DD date", key), map[string]any{key: raw})
	}
	return t, true, nil
}

func mapSlice[T, R any](items []T, fn func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}

func ticketResponse(t *domain.TicketDetails) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		CategoryID:     t.CategoryID,
		CategoryName:   t.CategoryName,
		PriorityID:     t.PriorityID,
		PriorityName:   t.PriorityName,
		StatusID:       t.StatusID,
		StatusName:     t.StatusName,
		IsClosed:       t.IsClosed(),
		DepartmentID:   t.DepartmentID,
		DepartmentName: t.DepartmentName,
		TeamID:         t.TeamID,
		TeamName:       t.TeamName,
		AssignedToID:   t.AssignedToID,
		AssignedToName: t.AssignedToName,
		CreatedByID:    t.CreatedByID,
		CreatedByName:  t.CreatedByName,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		ClosedAt:       t.ClosedAt,
	}
}

func commentResponse(cm *domain.TicketComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         cm.ID,
		TicketID:   cm.TicketID,
		UserID:     cm.UserID,
		AuthorName: cm.AuthorName,
		Comment:    cm.Comment,
		IsInternal: cm.IsInternal,
		CreatedAt:  cm.CreatedAt,
	}
}

func attachmentResponse(a *domain.TicketAttachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:          a.ID,
		TicketID:    a.TicketID,
		UserID:      a.UserID,
		FileName:    a.FileName,
		FilePath:    a.FilePath,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		UploadedAt:  a.UploadedAt,
	}
}

func feedbackResponse(f *domain.TicketFeedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:        f.ID,
		TicketID:  f.TicketID,
		UserID:    f.UserID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

func userResponse(u *domain.User) dto.UserResponse {
	roles := make([]dto.UserRoleResponse, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, dto.UserRoleResponse{Role: r.RoleName, DepartmentID: r.DepartmentID, TeamID: r.TeamID})
	}
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		IsActive:  u.IsActive,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func departmentResponse(d *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{ID: d.ID, Name: d.Name, Description: d.Description, IsActive: d.IsActive, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

func teamResponse(t *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{ID: t.ID, DepartmentID: t.DepartmentID, Name: t.Name, Description: t.Description, IsActive: t.IsActive, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func categoryResponse(cat *domain.TicketCategory) dto.CategoryResponse {
	return dto.CategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description, IsActive: cat.IsActive, CreatedAt: cat.CreatedAt}
}

func priorityResponse(p *domain.TicketPriority) dto.PriorityResponse {
	return dto.PriorityResponse{ID: p.ID, Name: p.Name, Description: p.Description, Level: p.Level, CreatedAt: p.CreatedAt}
}

func statusResponse(s *domain.TicketStatus) dto.TicketStatusResponse {
	return dto.TicketStatusResponse{ID: s.ID, Name: s.Name, Description: s.Description, IsTerminal: s.IsTerminal, Color: s.Color, CreatedAt: s.CreatedAt}
}

func faqCategoryResponse(cat *domain.FAQCategory) dto.FAQCategoryResponse {
	return dto.FAQCategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description, IsActive: cat.IsActive, CreatedAt: cat.CreatedAt, UpdatedAt: cat.UpdatedAt}
}

func faqItemResponse(item *domain.FAQItem) dto.FAQItemResponse {
	return dto.FAQItemResponse{
		ID:          item.ID,
		CategoryID:  item.CategoryID,
		Question:    item.Question,
		Answer:      item.Answer,
		AnswerHTML:  item.AnswerHTML,
		CreatedByID: item.CreatedByID,
		IsActive:    item.IsActive,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
