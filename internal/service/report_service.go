package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const (
	ticketsSheet = "Tickets"
	summarySheet = "Summary"
	reportTime   = "2006-01-02 15:04:05"
)

var ticketReportHeader = []any{
	"ID", "Title", "Status", "Priority", "Category", "Department", "Team",
	"Assigned To", "Created By", "Created At", "Updated At", "Closed At",
}

// TicketReporter is the slice of TicketService the report needs.
type TicketReporter interface {
	Export(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketDetails, error)
	Summary(ctx context.Context) (*TicketSummary, error)
}

// ReportService renders ticket exports as xlsx workbooks.
type ReportService struct {
	tickets TicketReporter
	logger  *zap.Logger
}

func NewReportService(tickets TicketReporter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{tickets: tickets, logger: logger}
}

// TicketWorkbook writes the filtered tickets and the status summary to a workbook.
func (s *ReportService) TicketWorkbook(ctx context.Context, filter repository.TicketFilter) ([]byte, error) {
	tickets, err := s.tickets.Export(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary, err := s.tickets.Summary(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("close workbook", zap.Error(cerr))
		}
	}()

	if err := writeTicketSheet(f, tickets); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("write tickets sheet: %w", err))
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("write summary sheet: %w", err))
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("encode workbook: %w", err))
	}
	s.logger.Info("ticket report generated", zap.Int("rows", len(tickets)))
	return buf.Bytes(), nil
}

func writeTicketSheet(f *excelize.File, tickets []domain.TicketDetails) error {
	if err := f.SetSheetName(f.GetSheetName(0), ticketsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ticketsSheet, "A1", &ticketReportHeader); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(ticketsSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, t := range tickets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			t.ID, t.Title, t.StatusName, t.PriorityName, t.CategoryName, t.DepartmentName,
			deref(t.TeamName), deref(t.AssignedToName), t.CreatedByName,
			t.CreatedAt.UTC().Format(reportTime), t.UpdatedAt.UTC().Format(reportTime), formatTime(t.ClosedAt),
		}
		if err := f.SetSheetRow(ticketsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(ticketsSheet, "B", "B", 40)
}

func writeSummarySheet(f *excelize.File, summary *TicketSummary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Total", summary.Total},
		{"Active", summary.Active},
		{},
		{"Status", "Tickets"},
	}
	for _, sc := range summary.ByStatus {
		rows = append(rows, []any{sc.StatusName, sc.Count})
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(reportTime)
}
