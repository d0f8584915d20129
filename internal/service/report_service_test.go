package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/helpdesk/internal/repository"
)

func TestTicketWorkbook(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.tickets.Create(ctx, validCreate(), 1)
	require.NoError(t, err)

	data, err := NewReportService(f.tickets, nil).TicketWorkbook(ctx, repository.TicketFilter{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Tickets", "Summary"}, book.GetSheetList())

	rows, err := book.GetRows("Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Title", rows[0][1])
	assert.Equal(t, "Printer jammed", rows[1][1])
	assert.Equal(t, "Open", rows[1][2])

	summary, err := book.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total", "1"}, summary[0])
}
