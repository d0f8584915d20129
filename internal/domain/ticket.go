package domain

import "time"

// DefaultStatusID is the status assigned to newly created tickets.
const DefaultStatusID int64 = 1

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           int64      `db:"id"`
	Title        string     `db:"title"`
	Description  string     `db:"description"`
	CategoryID   int64      `db:"category_id"`
	PriorityID   int64      `db:"priority_id"`
	StatusID     int64      `db:"status_id"`
	DepartmentID int64      `db:"department_id"`
	TeamID       *int64     `db:"team_id"`
	AssignedToID *int64     `db:"assigned_to_id"`
	CreatedByID  int64      `db:"created_by_id"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	ClosedAt     *time.Time `db:"closed_at"`
}

// IsClosed reports whether the ticket carries a closing timestamp.
func (t *Ticket) IsClosed() bool {
	return t.ClosedAt != nil
}

// TicketDetails is the read model returned by every ticket query.
type TicketDetails struct {
	Ticket
	CategoryName     string  `db:"category_name"`
	PriorityName     string  `db:"priority_name"`
	StatusName       string  `db:"status_name"`
	StatusIsTerminal bool    `db:"status_is_terminal"`
	DepartmentName   string  `db:"department_name"`
	TeamName         *string `db:"team_name"`
	AssignedToName   *string `db:"assigned_to_name"`
	CreatedByName    string  `db:"created_by_name"`
}

// TicketStatusCount is one row of a status breakdown.
type TicketStatusCount struct {
	StatusID   int64  `db:"status_id"`
	StatusName string `db:"status_name"`
	Count      int64  `db:"ticket_count"`
}
