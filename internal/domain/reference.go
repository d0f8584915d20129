package domain

import (
	"strings"
	"time"
)

// TicketCategory classifies what a ticket is about.
type TicketCategory struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

// TicketPriority expresses urgency. Level orders priorities for display.
type TicketPriority struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Level       int       `db:"level"`
	CreatedAt   time.Time `db:"created_at"`
}

// TicketStatus is a workflow state. IsTerminal marks states that close a ticket;
// Color is display metadata only.
type TicketStatus struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsTerminal  bool      `db:"is_terminal"`
	Color       string    `db:"color"`
	CreatedAt   time.Time `db:"created_at"`
}

// terminalStatusKeywords is the one list used to infer closure from a status name.
var terminalStatusKeywords = []string{"closed", "resolved"}

// IsTerminalStatusName infers whether a status name denotes a closed ticket.
// Only used when a status is created without an explicit flag.
func IsTerminalStatusName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range terminalStatusKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FindCloseStatus picks the status CloseTicket moves a ticket into.
func FindCloseStatus(statuses []TicketStatus) (*TicketStatus, bool) {
	for _, kw := range terminalStatusKeywords {
		for i := range statuses {
			if statuses[i].IsTerminal && strings.Contains(strings.ToLower(statuses[i].Name), kw) {
				return &statuses[i], true
			}
		}
	}
	for i := range statuses {
		if statuses[i].IsTerminal {
			return &statuses[i], true
		}
	}
	return nil, false
}

// FindReopenStatus picks the status ReopenTicket moves a ticket into.
func FindReopenStatus(statuses []TicketStatus) (*TicketStatus, bool) {
	for _, kw := range []string{"reopen", "open"} {
		for i := range statuses {
			if !statuses[i].IsTerminal && strings.Contains(strings.ToLower(statuses[i].Name), kw) {
				return &statuses[i], true
			}
		}
	}
	return nil, false
}
