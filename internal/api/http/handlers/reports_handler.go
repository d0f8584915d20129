package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookRenderer builds ticket exports.
type WorkbookRenderer interface {
	TicketWorkbook(ctx context.Context, filter repository.TicketFilter) ([]byte, error)
}

// ReportsHandler serves /api/reports.
type ReportsHandler struct {
	reports WorkbookRenderer
	now     func() time.Time
}

func NewReportsHandler(reports WorkbookRenderer) *ReportsHandler {
	return &ReportsHandler{reports: reports, now: time.Now}
}

// TicketsWorkbook GET /api/reports/tickets.xlsx.
// Accepts department_id, team_id, status_id, priority_id, category_id,
// assigned_to_id, created_by_id, active, from and to.
func (h *ReportsHandler) TicketsWorkbook(c *fiber.Ctx) error {
	filter, err := reportFilter(c)
	if err != nil {
		return err
	}
	data, err := h.reports.TicketWorkbook(c.UserContext(), filter)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("tickets-%s.xlsx", h.now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment(name)
	return c.Send(data)
}

func reportFilter(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{ActiveOnly: c.QueryBool("active", false)}
	ids := map[string]**int64{
		"department_id":  &filter.DepartmentID,
		"team_id":        &filter.TeamID,
		"status_id":      &filter.StatusID,
		"priority_id":    &filter.PriorityID,
		"category_id":    &filter.CategoryID,
		"assigned_to_id": &filter.AssignedToID,
		"created_by_id":  &filter.CreatedByID,
	}
	for key, dst := range ids {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			return filter, apperrors.NewValidationError(fmt.Sprintf("Invalid %s", key), map[string]any{key: raw})
		}
		*dst = &v
	}
	if c.Query("from") != "" {
		from, err := queryDate(c, "from")
		if err != nil {
			return filter, err
		}
		filter.CreatedFrom = &from
	}
	if c.Query("to") != "" {
		to, err := queryDateEnd(c, "to")
		if err != nil {
			return filter, err
		}
		filter.CreatedTo = &to
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		return filter, apperrors.NewValidationError("Start date must not be after end date", nil)
	}
	return filter, nil
}
